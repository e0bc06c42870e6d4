package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/library-access-api/internal/application/otp"
	"github.com/library-access-api/internal/application/session"
	"github.com/library-access-api/internal/domain"
	"github.com/library-access-api/internal/pkg/validate"
)

type otpRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type otpVerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,numeric"`
}

// OTPHandler handles one-time-password issuance and verification.
type OTPHandler struct {
	svc      otp.Service
	sessions session.Service
}

// NewOTPHandler builds the handler. sessions may be nil, in which case a
// successful verification carries no bearer.
func NewOTPHandler(svc otp.Service, sessions session.Service) *OTPHandler {
	return &OTPHandler{svc: svc, sessions: sessions}
}

func (h *OTPHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.GenerateAndIssue(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, "verification code sent")
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req otpVerifyRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Verify(r.Context(), req.Email, req.Code); err != nil {
		writeError(w, r, err)
		return
	}

	// The code is consumed at this point, so an issuance failure must not
	// turn the result into a failure the caller cannot retry.
	res := ResultEnvelope{Success: true, Message: "code verified"}
	if h.sessions != nil {
		bearer, role, err := h.sessions.Issue(r.Context(), req.Email)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			slog.InfoContext(r.Context(), "verified identity has no account", "identity", req.Email)
		case err != nil:
			slog.ErrorContext(r.Context(), "bearer issuance failed after verification", "identity", req.Email, "kind", domain.KindOf(err), "err", err)
		default:
			res.Bearer = bearer
			res.Role = role
		}
	}
	writeJSON(w, http.StatusOK, res)
}
