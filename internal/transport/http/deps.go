package http

import (
	"context"
	"time"

	"github.com/library-access-api/internal/domain"
)

// OTPRepository is the minimal interface the router requires from an OTP store.
type OTPRepository interface {
	Put(ctx context.Context, r *domain.OTPRecord) error
	Get(ctx context.Context, identity string) (*domain.OTPRecord, error)
	// Consume deletes the record only while its code equals code and now is
	// before its expiry. A failed check returns domain.ErrConditionFailed.
	Consume(ctx context.Context, identity, code string, now time.Time) error
}

// AccountRepository is the minimal interface the router requires from an
// account store spanning the three role partitions.
type AccountRepository interface {
	Put(ctx context.Context, p domain.Partition, a *domain.Account) error
	FindByEmail(ctx context.Context, p domain.Partition, email string) (*domain.Account, error)
	FindActiveByEmail(ctx context.Context, p domain.Partition, email string) (*domain.Account, error)
	// SoftDelete flags the account deleted. A non-nil library must still
	// match the stored library or domain.ErrConditionFailed is returned.
	SoftDelete(ctx context.Context, p domain.Partition, accountID string, library *string) error
}
