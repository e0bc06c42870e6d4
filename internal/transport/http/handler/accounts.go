package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/library-access-api/internal/application/access"
	"github.com/library-access-api/internal/domain"
	"github.com/library-access-api/internal/pkg/validate"
	"github.com/library-access-api/internal/transport/http/middleware"
)

type deleteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// AccountHandler handles role-scoped account deletion. The acting role and
// the actor's email are taken from the verified bearer, never the body.
type AccountHandler struct {
	svc access.Service
}

func NewAccountHandler(svc access.Service) *AccountHandler {
	return &AccountHandler{svc: svc}
}

func (h *AccountHandler) DeleteLibrarian(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, func(acting domain.Role, actor, target string) error {
		return h.svc.DeleteLibrarian(r.Context(), acting, actor, target)
	})
}

func (h *AccountHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, func(acting domain.Role, actor, target string) error {
		return h.svc.DeleteUser(r.Context(), acting, actor, target)
	})
}

func (h *AccountHandler) DeleteAny(w http.ResponseWriter, r *http.Request) {
	partition := chi.URLParam(r, "partition")
	h.handle(w, r, func(acting domain.Role, _, target string) error {
		return h.svc.DeleteAny(r.Context(), acting, target, partition)
	})
}

func (h *AccountHandler) handle(w http.ResponseWriter, r *http.Request, del func(acting domain.Role, actor, target string) error) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ResultEnvelope{
			Message:   "unauthorized",
			ErrorCode: domain.KindUnauthorized,
		})
		return
	}
	var req deleteRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}
	acting, ok := domain.ParseRole(claims.Role)
	if !ok {
		writeError(w, r, fmt.Errorf("unknown role %q: %w", claims.Role, domain.ErrUnauthorized))
		return
	}
	if err := del(acting, claims.Email, req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, "account deleted")
}
