package firestore

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/library-access-api/internal/domain"
)

// emulatorClient connects to FIRESTORE_EMULATOR_HOST, skipping when unset.
// Collection names are unique per test run.
func emulatorClient(t *testing.T) (*firestore.Client, string) {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "library-access-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, ulid.Make().String()
}

func TestOTPRepo_ConsumeOnce(t *testing.T) {
	client, run := emulatorClient(t)
	ctx := context.Background()
	repo := NewOTPRepo(client, "otps_"+run)
	now := time.Now()

	require.NoError(t, repo.Put(ctx, &domain.OTPRecord{Identity: "a@b.com", Code: "000123", ExpiresAt: now.Add(time.Minute)}))
	rec, err := repo.Get(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", rec.Identity)
	assert.Equal(t, "000123", rec.Code)

	assert.ErrorIs(t, repo.Consume(ctx, "a@b.com", "999999", now), domain.ErrConditionFailed)
	require.NoError(t, repo.Consume(ctx, "a@b.com", "000123", now))
	assert.ErrorIs(t, repo.Consume(ctx, "a@b.com", "000123", now), domain.ErrNotFound)

	_, err = repo.Get(ctx, "a@b.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAccountRepo_SoftDeleteChecksLibrary(t *testing.T) {
	client, run := emulatorClient(t)
	ctx := context.Background()
	repo := NewAccountRepo(client, map[domain.Partition]string{
		domain.PartitionLibrarians: "librarians_" + run,
	})

	require.NoError(t, repo.Put(ctx, domain.PartitionLibrarians, &domain.Account{AccountID: "b1", Email: "b@lib.org", LibraryID: "L1"}))
	found, err := repo.FindByEmail(ctx, domain.PartitionLibrarians, "b@lib.org")
	require.NoError(t, err)
	assert.Equal(t, "b1", found.AccountID)

	other := "L2"
	assert.ErrorIs(t, repo.SoftDelete(ctx, domain.PartitionLibrarians, "b1", &other), domain.ErrConditionFailed)
	lib := "L1"
	require.NoError(t, repo.SoftDelete(ctx, domain.PartitionLibrarians, "b1", &lib))

	found, err = repo.FindByEmail(ctx, domain.PartitionLibrarians, "b@lib.org")
	require.NoError(t, err)
	assert.True(t, found.IsDeleted)
	_, err = repo.FindActiveByEmail(ctx, domain.PartitionLibrarians, "b@lib.org")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, repo.SoftDelete(ctx, domain.PartitionLibrarians, "missing", nil), domain.ErrNotFound)
	_, err = repo.FindByEmail(ctx, domain.PartitionUsers, "u@mail.org")
	assert.ErrorIs(t, err, domain.ErrInvalidTarget)
}
