package session

import (
	"context"
	"errors"
	"testing"

	"github.com/library-access-api/internal/domain"
	"github.com/library-access-api/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(email, role, libraryID string) (string, error) {
	args := m.Called(email, role, libraryID)
	return args.String(0), args.Error(1)
}

type failingStore struct{}

func (failingStore) FindActiveByEmail(context.Context, domain.Partition, string) (*domain.Account, error) {
	return nil, errors.New("timeout")
}

func newService(t *testing.T, jwt *mockJWTSigner) Service {
	t.Helper()
	ctx := context.Background()
	repo := memory.NewAccountRepo()
	require.NoError(t, repo.Put(ctx, domain.PartitionAdmins, &domain.Account{AccountID: "a1", Email: "a@lib.org", LibraryID: "L1", IsDeleted: true}))
	require.NoError(t, repo.Put(ctx, domain.PartitionLibrarians, &domain.Account{AccountID: "b1", Email: "a@lib.org", LibraryID: "L1"}))
	require.NoError(t, repo.Put(ctx, domain.PartitionUsers, &domain.Account{AccountID: "u1", Email: "u@mail.org"}))
	return NewService(ServiceDeps{AccountRepo: repo, JWTProvider: jwt, SuperAdminEmails: []string{"root@lib.org"}})
}

func TestIssue_SuperAdmin(t *testing.T) {
	jwt := &mockJWTSigner{}
	jwt.On("Sign", "root@lib.org", "super_admin", "").Return("tok", nil)

	bearer, role, err := newService(t, jwt).Issue(context.Background(), "root@lib.org")
	require.NoError(t, err)
	assert.Equal(t, "tok", bearer)
	assert.Equal(t, domain.RoleSuperAdmin, role)
}

func TestIssue_SkipsDeletedAccounts(t *testing.T) {
	jwt := &mockJWTSigner{}
	jwt.On("Sign", "a@lib.org", "librarian", "L1").Return("tok", nil)

	_, role, err := newService(t, jwt).Issue(context.Background(), "a@lib.org")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleLibrarian, role)
	jwt.AssertExpectations(t)
}

func TestIssue_ActiveDuplicateBehindDeletedMatch(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAccountRepo()
	require.NoError(t, repo.Put(ctx, domain.PartitionAdmins, &domain.Account{AccountID: "a1", Email: "dup@lib.org", LibraryID: "L1", IsDeleted: true}))
	require.NoError(t, repo.Put(ctx, domain.PartitionAdmins, &domain.Account{AccountID: "a2", Email: "dup@lib.org", LibraryID: "L2"}))

	jwt := &mockJWTSigner{}
	jwt.On("Sign", "dup@lib.org", "admin", "L2").Return("tok", nil)
	svc := NewService(ServiceDeps{AccountRepo: repo, JWTProvider: jwt})

	_, role, err := svc.Issue(ctx, "dup@lib.org")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, role)
	jwt.AssertExpectations(t)
}

func TestIssue_User(t *testing.T) {
	jwt := &mockJWTSigner{}
	jwt.On("Sign", "u@mail.org", "user", "").Return("tok", nil)

	_, role, err := newService(t, jwt).Issue(context.Background(), "u@mail.org")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, role)
}

func TestIssue_NoAccount(t *testing.T) {
	jwt := &mockJWTSigner{}
	_, _, err := newService(t, jwt).Issue(context.Background(), "ghost@mail.org")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	jwt.AssertNotCalled(t, "Sign", mock.Anything, mock.Anything, mock.Anything)
}

func TestIssue_StoreFailure(t *testing.T) {
	svc := NewService(ServiceDeps{AccountRepo: failingStore{}, JWTProvider: &mockJWTSigner{}})
	_, _, err := svc.Issue(context.Background(), "u@mail.org")
	assert.ErrorIs(t, err, domain.ErrStoreRead)
}
