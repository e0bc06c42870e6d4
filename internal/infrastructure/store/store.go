package store

import (
	"context"
	"fmt"
	"time"

	"github.com/library-access-api/internal/config"
	"github.com/library-access-api/internal/domain"
	"github.com/library-access-api/internal/infrastructure/dynamo"
	fsinfra "github.com/library-access-api/internal/infrastructure/firestore"
	"github.com/library-access-api/internal/infrastructure/memory"
)

// OTPStore is implemented by every backend's OTP repository.
type OTPStore interface {
	Put(ctx context.Context, r *domain.OTPRecord) error
	Get(ctx context.Context, identity string) (*domain.OTPRecord, error)
	Consume(ctx context.Context, identity, code string, now time.Time) error
}

// AccountStore is implemented by every backend's account repository.
type AccountStore interface {
	Put(ctx context.Context, p domain.Partition, a *domain.Account) error
	FindByEmail(ctx context.Context, p domain.Partition, email string) (*domain.Account, error)
	FindActiveByEmail(ctx context.Context, p domain.Partition, email string) (*domain.Account, error)
	SoftDelete(ctx context.Context, p domain.Partition, accountID string, library *string) error
}

// Stores is an opened backend. Close releases its client.
type Stores struct {
	Backend  string
	OTPs     OTPStore
	Accounts AccountStore
	Close    func() error
}

// Open connects to the backend named by cfg.StoreBackend. DynamoDB tables
// are created on first use.
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.StoreBackend {
	case config.BackendDynamo:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		dynamo.Bootstrap(ctx, client, cfg.Collections)
		return &Stores{
			Backend:  cfg.StoreBackend,
			OTPs:     dynamo.NewOTPRepo(client, cfg.Collections.OTPs),
			Accounts: dynamo.NewAccountRepo(client, dynamo.AccountTables(cfg.Collections)),
			Close:    func() error { return nil },
		}, nil
	case config.BackendFirestore:
		client, err := fsinfra.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Backend:  cfg.StoreBackend,
			OTPs:     fsinfra.NewOTPRepo(client, cfg.Collections.OTPs),
			Accounts: fsinfra.NewAccountRepo(client, fsinfra.AccountCollections(cfg.Collections)),
			Close:    client.Close,
		}, nil
	case config.BackendMemory:
		return &Stores{
			Backend:  cfg.StoreBackend,
			OTPs:     memory.NewOTPRepo(),
			Accounts: memory.NewAccountRepo(),
			Close:    func() error { return nil },
		}, nil
	}
	return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
}
