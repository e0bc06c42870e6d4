package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/library-access-api/internal/domain"
)

// OTPRepo keeps OTP records in process memory, keyed by identity.
type OTPRepo struct {
	mu      sync.Mutex
	records map[string]domain.OTPRecord
}

func NewOTPRepo() *OTPRepo {
	return &OTPRepo{records: make(map[string]domain.OTPRecord)}
}

func (r *OTPRepo) Put(_ context.Context, rec *domain.OTPRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.Identity] = *rec
	return nil
}

func (r *OTPRepo) Get(_ context.Context, identity string) (*domain.OTPRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[identity]
	if !ok {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	return &rec, nil
}

// Consume deletes the record only if it still accepts code at now.
func (r *OTPRepo) Consume(_ context.Context, identity, code string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[identity]
	if !ok {
		return fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	if !rec.Accepts(code, now) {
		return fmt.Errorf("otp no longer matches: %w", domain.ErrConditionFailed)
	}
	delete(r.records, identity)
	return nil
}
