package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/library-access-api/internal/domain"
)

// Service soft-deletes accounts on behalf of an acting role. The acting role
// must come from a server-verified source such as bearer claims.
type Service interface {
	// DeleteLibrarian lets an admin remove a librarian of the same library.
	DeleteLibrarian(ctx context.Context, acting domain.Role, adminEmail, librarianEmail string) error
	// DeleteUser lets a librarian remove a user. Only existence of both
	// accounts is checked; users carry no library.
	DeleteUser(ctx context.Context, acting domain.Role, librarianEmail, userEmail string) error
	// DeleteAny lets a super admin remove the first account matching
	// targetEmail in the named collection.
	DeleteAny(ctx context.Context, acting domain.Role, targetEmail, collection string) error
}

type accountStore interface {
	FindByEmail(ctx context.Context, p domain.Partition, email string) (*domain.Account, error)
	SoftDelete(ctx context.Context, p domain.Partition, accountID string, library *string) error
}

type service struct {
	repo accountStore
}

type ServiceDeps struct {
	AccountRepo accountStore
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.AccountRepo}
}

// party names an account to resolve: which collection, by which email, and
// how it is called in error messages.
type party struct {
	partition domain.Partition
	email     string
	label     string
}

// rule is one step of the hierarchy: who may act, whose account must exist
// first, and whether actor and target must share a library.
type rule struct {
	role       domain.Role
	actor      *party
	target     party
	sameTenant bool
}

func (s *service) DeleteLibrarian(ctx context.Context, acting domain.Role, adminEmail, librarianEmail string) error {
	return s.apply(ctx, acting, rule{
		role:       domain.RoleAdmin,
		actor:      &party{domain.PartitionAdmins, adminEmail, "admin"},
		target:     party{domain.PartitionLibrarians, librarianEmail, "librarian"},
		sameTenant: true,
	})
}

func (s *service) DeleteUser(ctx context.Context, acting domain.Role, librarianEmail, userEmail string) error {
	return s.apply(ctx, acting, rule{
		role:   domain.RoleLibrarian,
		actor:  &party{domain.PartitionLibrarians, librarianEmail, "librarian"},
		target: party{domain.PartitionUsers, userEmail, "user"},
	})
}

func (s *service) DeleteAny(ctx context.Context, acting domain.Role, targetEmail, collection string) error {
	// An unknown collection is rejected before the role gate.
	p, err := domain.ParsePartition(collection)
	if err != nil {
		return err
	}
	return s.apply(ctx, acting, rule{
		role:   domain.RoleSuperAdmin,
		target: party{p, targetEmail, "account"},
	})
}

// apply runs role gate, resolution chain and the single soft-delete write.
func (s *service) apply(ctx context.Context, acting domain.Role, r rule) error {
	if acting != r.role {
		return fmt.Errorf("%s role required: %w", r.role, domain.ErrUnauthorized)
	}
	var actor *domain.Account
	if r.actor != nil {
		a, err := s.resolve(ctx, *r.actor)
		if err != nil {
			return err
		}
		actor = a
	}
	target, err := s.resolve(ctx, r.target)
	if err != nil {
		return err
	}

	var library *string
	if r.sameTenant {
		if !actor.SameLibrary(target) {
			return fmt.Errorf("%s and %s belong to different libraries: %w", r.actor.label, r.target.label, domain.ErrCrossTenant)
		}
		// Accounts without a library carry no library_id attribute to match.
		if actor.LibraryID != "" {
			library = &actor.LibraryID
		}
	}

	if err := s.repo.SoftDelete(ctx, r.target.partition, target.AccountID, library); err != nil {
		switch {
		case errors.Is(err, domain.ErrConditionFailed):
			return fmt.Errorf("%s changed library before delete: %w", r.target.label, domain.ErrCrossTenant)
		case errors.Is(err, domain.ErrNotFound):
			return fmt.Errorf("%s not found: %w", r.target.label, domain.ErrNotFound)
		default:
			return fmt.Errorf("%w: soft-delete %s: %w", domain.ErrStoreWrite, r.target.label, err)
		}
	}
	slog.Info("account soft-deleted", "partition", r.target.partition, "account_id", target.AccountID, "acting_role", acting)
	return nil
}

func (s *service) resolve(ctx context.Context, p party) (*domain.Account, error) {
	a, err := s.repo.FindByEmail(ctx, p.partition, p.email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%s not found: %w", p.label, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: lookup %s: %w", domain.ErrStoreRead, p.label, err)
	}
	return a, nil
}
