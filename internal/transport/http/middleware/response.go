package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/library-access-api/internal/domain"
)

// writeJSONError writes the same result envelope the handlers use, so a
// request rejected here looks like one rejected by a service.
func writeJSONError(w http.ResponseWriter, status int, kind domain.Kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success":    false,
		"message":    msg,
		"error_code": kind,
	})
}
