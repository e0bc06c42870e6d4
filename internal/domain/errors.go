package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotFound            = errors.New("not found")
	ErrCrossTenant         = errors.New("cross-tenant action forbidden")
	ErrInvalidTarget       = errors.New("invalid target")
	ErrStoreRead           = errors.New("store read failed")
	ErrStoreWrite          = errors.New("store write failed")
	ErrEmailDispatch       = errors.New("email dispatch failed")
	ErrInvalidOrExpiredOTP = errors.New("invalid or expired code")
	ErrBadRequest          = errors.New("bad request")
)

// ErrConditionFailed is returned by stores when a conditional write finds the
// record in a state other than the one the caller resolved.
var ErrConditionFailed = errors.New("condition failed")

// Kind is the stable, machine-readable error category carried next to the
// human-readable message in responses.
type Kind string

const (
	KindUnauthorized        Kind = "UNAUTHORIZED"
	KindNotFound            Kind = "NOT_FOUND"
	KindCrossTenant         Kind = "CROSS_TENANT_FORBIDDEN"
	KindInvalidTarget       Kind = "INVALID_TARGET"
	KindStoreRead           Kind = "STORE_READ_ERROR"
	KindStoreWrite          Kind = "STORE_WRITE_ERROR"
	KindEmailDispatch       Kind = "EMAIL_DISPATCH_ERROR"
	KindInvalidOrExpiredOTP Kind = "INVALID_OR_EXPIRED_OTP"
	KindBadRequest          Kind = "BAD_REQUEST"
	KindInternal            Kind = "INTERNAL_ERROR"
)

// kinds is ordered: the first sentinel found in the chain wins, so an OTP
// failure that also wraps ErrNotFound still reports as InvalidOrExpiredOtp.
var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrInvalidOrExpiredOTP, KindInvalidOrExpiredOTP},
	{ErrUnauthorized, KindUnauthorized},
	{ErrInvalidTarget, KindInvalidTarget},
	{ErrCrossTenant, KindCrossTenant},
	{ErrNotFound, KindNotFound},
	{ErrEmailDispatch, KindEmailDispatch},
	{ErrStoreWrite, KindStoreWrite},
	{ErrStoreRead, KindStoreRead},
	{ErrBadRequest, KindBadRequest},
}

// KindOf classifies err. Nil maps to the empty kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}
