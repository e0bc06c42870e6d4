package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/library-access-api/internal/domain"
)

const (
	defaultTTL    = 300 * time.Second
	defaultLength = 6
	maxLength     = 18

	emailSubject = "Your verification code"
)

// Service issues and verifies single-use numeric codes keyed by email.
type Service interface {
	// GenerateAndIssue stores a fresh code for identity, replacing any live
	// one, and emails it. No retry is attempted.
	GenerateAndIssue(ctx context.Context, identity string) error
	// Verify consumes the live code for identity. Wrong, expired and
	// missing codes all fail with domain.ErrInvalidOrExpiredOTP.
	Verify(ctx context.Context, identity, code string) error
}

type otpStore interface {
	Put(ctx context.Context, r *domain.OTPRecord) error
	Get(ctx context.Context, identity string) (*domain.OTPRecord, error)
	Consume(ctx context.Context, identity, code string, now time.Time) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type service struct {
	repo     otpStore
	mailer   mailer
	ttl      time.Duration
	length   int
	now      func() time.Time
	generate func(length int) (string, error)
}

type ServiceDeps struct {
	OTPRepo otpStore
	Mailer  mailer
	TTL     time.Duration
	Length  int
	// Now and Generate default to the wall clock and crypto/rand.
	Now      func() time.Time
	Generate func(length int) (string, error)
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		repo:     deps.OTPRepo,
		mailer:   deps.Mailer,
		ttl:      deps.TTL,
		length:   deps.Length,
		now:      deps.Now,
		generate: deps.Generate,
	}
	if s.ttl <= 0 {
		s.ttl = defaultTTL
	}
	if s.length <= 0 || s.length > maxLength {
		if deps.Length != 0 {
			slog.Warn("otp length out of range, using default", "length", deps.Length, "default", defaultLength)
		}
		s.length = defaultLength
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.generate == nil {
		s.generate = GenerateCode
	}
	return s
}

func (s *service) GenerateAndIssue(ctx context.Context, identity string) error {
	code, err := s.generate(s.length)
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	rec := &domain.OTPRecord{
		Identity:  identity,
		Code:      code,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.repo.Put(ctx, rec); err != nil {
		return fmt.Errorf("%w: persist otp: %w", domain.ErrStoreWrite, err)
	}
	if err := s.mailer.SendEmail(identity, emailSubject, emailBody(code, s.ttl)); err != nil {
		// The record stays; it is still valid until expiry or the next issuance.
		slog.Warn("otp persisted but email dispatch failed", "identity", identity, "err", err)
		return fmt.Errorf("%w: %w", domain.ErrEmailDispatch, err)
	}
	return nil
}

func (s *service) Verify(ctx context.Context, identity, code string) error {
	rec, err := s.repo.Get(ctx, identity)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidOrExpiredOTP
		}
		return fmt.Errorf("%w: load otp: %w", domain.ErrStoreRead, err)
	}
	if !rec.Complete() {
		slog.Warn("otp record missing fields", "identity", identity)
		return domain.ErrInvalidOrExpiredOTP
	}
	now := s.now()
	if !rec.Accepts(code, now) {
		return domain.ErrInvalidOrExpiredOTP
	}
	// Consume re-checks code and expiry at the store, so only one of two
	// concurrent verifications can succeed.
	if err := s.repo.Consume(ctx, identity, code, now); err != nil {
		if errors.Is(err, domain.ErrConditionFailed) || errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidOrExpiredOTP
		}
		return fmt.Errorf("%w: consume otp: %w", domain.ErrStoreWrite, err)
	}
	return nil
}

// GenerateCode returns a uniformly random zero-padded numeric code of
// 1 to 18 digits.
func GenerateCode(length int) (string, error) {
	if length < 1 || length > maxLength {
		return "", fmt.Errorf("code length %d outside 1..%d", length, maxLength)
	}
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	digits := n.String()
	return strings.Repeat("0", length-len(digits)) + digits, nil
}

func emailBody(code string, ttl time.Duration) string {
	return fmt.Sprintf("Your verification code is %s. It is valid for %s.", code, validity(ttl))
}

func validity(ttl time.Duration) string {
	switch {
	case ttl == time.Minute:
		return "1 minute"
	case ttl%time.Minute == 0:
		return fmt.Sprintf("%d minutes", int(ttl.Minutes()))
	default:
		return fmt.Sprintf("%d seconds", int(ttl.Seconds()))
	}
}
