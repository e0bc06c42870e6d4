package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/library-access-api/internal/config"
	"github.com/library-access-api/internal/domain"
	"github.com/library-access-api/internal/infrastructure/store"
	"github.com/library-access-api/internal/pkg/id"
	"github.com/library-access-api/internal/pkg/validate"
)

// fixture is one line of the seed file.
type fixture struct {
	Partition string `json:"partition" validate:"required,oneof=admins librarians users"`
	Email     string `json:"email" validate:"required,email"`
	LibraryID string `json:"library_id"`
}

func main() {
	file := flag.String("file", "accounts.json", "JSON array of {partition, email, library_id}")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}
	cfg := config.Load()

	fixtures, err := readFixtures(*file)
	if err != nil {
		slog.Error("read fixtures", "file", *file, "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	stores, err := store.Open(ctx, cfg)
	if err != nil {
		slog.Error("open store", "backend", cfg.StoreBackend, "err", err)
		os.Exit(1)
	}
	defer stores.Close()

	n, err := seed(ctx, stores.Accounts, fixtures)
	if err != nil {
		slog.Error("seed accounts", "inserted", n, "err", err)
		os.Exit(1)
	}
	slog.Info("seeded accounts", "count", n, "backend", stores.Backend)
}

func readFixtures(path string) ([]fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fixtures []fixture
	if err := json.Unmarshal(raw, &fixtures); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	for i, f := range fixtures {
		if err := validate.Struct(f); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return fixtures, nil
}

type accountWriter interface {
	Put(ctx context.Context, p domain.Partition, a *domain.Account) error
}

// seed inserts fixtures in order and returns how many were written.
func seed(ctx context.Context, repo accountWriter, fixtures []fixture) (int, error) {
	for i, f := range fixtures {
		p, err := domain.ParsePartition(f.Partition)
		if err != nil {
			return i, err
		}
		a := &domain.Account{AccountID: id.New(), Email: f.Email, LibraryID: f.LibraryID}
		if err := repo.Put(ctx, p, a); err != nil {
			return i, fmt.Errorf("put %s in %s: %w", f.Email, p, err)
		}
		created, err := id.CreatedAt(a.AccountID)
		if err != nil {
			return i + 1, fmt.Errorf("account id %s: %w", a.AccountID, err)
		}
		slog.Info("seeded account", "partition", p, "email", f.Email, "account_id", a.AccountID, "created_at", created)
	}
	return len(fixtures), nil
}
