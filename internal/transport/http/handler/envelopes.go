package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/library-access-api/internal/domain"
)

// ResultEnvelope is the response body of every operation. Success keeps the
// plain boolean contract; ErrorCode carries the failure kind.
type ResultEnvelope struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	ErrorCode domain.Kind `json:"error_code,omitempty"`
	Bearer    string      `json:"Bearer,omitempty"`
	Role      domain.Role `json:"role,omitempty"`
}

// statusByKind maps error kinds to HTTP status codes.
var statusByKind = map[domain.Kind]int{
	domain.KindUnauthorized:        http.StatusForbidden,
	domain.KindNotFound:            http.StatusNotFound,
	domain.KindCrossTenant:         http.StatusForbidden,
	domain.KindInvalidTarget:       http.StatusBadRequest,
	domain.KindBadRequest:          http.StatusBadRequest,
	domain.KindInvalidOrExpiredOTP: http.StatusUnauthorized,
	domain.KindStoreRead:           http.StatusServiceUnavailable,
	domain.KindStoreWrite:          http.StatusServiceUnavailable,
	domain.KindEmailDispatch:       http.StatusBadGateway,
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, ResultEnvelope{Success: true, Message: msg})
}

// writeError classifies err. Infrastructure failures are logged and answered
// with the sentinel text only, so causes never reach the caller.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	msg := err.Error()
	switch kind {
	case domain.KindStoreRead:
		msg = domain.ErrStoreRead.Error()
	case domain.KindStoreWrite:
		msg = domain.ErrStoreWrite.Error()
	case domain.KindEmailDispatch:
		msg = domain.ErrEmailDispatch.Error()
	case domain.KindInvalidOrExpiredOTP:
		msg = domain.ErrInvalidOrExpiredOTP.Error()
	case domain.KindInternal:
		msg = "internal error"
	}
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "kind", kind, "error", err)
	}
	writeJSON(w, status, ResultEnvelope{Success: false, Message: msg, ErrorCode: kind})
}

// decode reads a JSON body into dst, mapping malformed input to
// domain.ErrBadRequest.
func decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", domain.ErrBadRequest)
	}
	return nil
}
