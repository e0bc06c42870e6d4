package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/library-access-api/internal/domain"
)

// Service turns a verified identity into a bearer token whose claims carry
// the role the authorization checks trust.
type Service interface {
	Issue(ctx context.Context, email string) (bearer string, role domain.Role, err error)
}

type accountStore interface {
	FindActiveByEmail(ctx context.Context, p domain.Partition, email string) (*domain.Account, error)
}

type jwtSigner interface {
	Sign(email, role, libraryID string) (string, error)
}

type service struct {
	repo        accountStore
	jwtProvider jwtSigner
	superAdmins map[string]struct{}
}

type ServiceDeps struct {
	AccountRepo      accountStore
	JWTProvider      jwtSigner
	SuperAdminEmails []string
}

func NewService(deps ServiceDeps) Service {
	admins := make(map[string]struct{}, len(deps.SuperAdminEmails))
	for _, e := range deps.SuperAdminEmails {
		admins[e] = struct{}{}
	}
	return &service{repo: deps.AccountRepo, jwtProvider: deps.JWTProvider, superAdmins: admins}
}

func (s *service) Issue(ctx context.Context, email string) (string, domain.Role, error) {
	role, library, err := s.resolveRole(ctx, email)
	if err != nil {
		return "", "", err
	}
	bearer, err := s.jwtProvider.Sign(email, string(role), library)
	if err != nil {
		return "", "", fmt.Errorf("sign bearer: %w", err)
	}
	return bearer, role, nil
}

// resolveRole checks the configured super admins, then each partition from
// the highest role down, skipping soft-deleted accounts.
func (s *service) resolveRole(ctx context.Context, email string) (domain.Role, string, error) {
	if _, ok := s.superAdmins[email]; ok {
		return domain.RoleSuperAdmin, "", nil
	}
	for _, p := range domain.Partitions {
		a, err := s.repo.FindActiveByEmail(ctx, p, email)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return "", "", fmt.Errorf("%w: lookup %s: %w", domain.ErrStoreRead, p, err)
		}
		return p.Role(), a.LibraryID, nil
	}
	return "", "", fmt.Errorf("no active account for identity: %w", domain.ErrNotFound)
}
