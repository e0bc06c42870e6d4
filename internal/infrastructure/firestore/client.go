package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"google.golang.org/api/option"

	"github.com/library-access-api/internal/config"
	"github.com/library-access-api/internal/domain"
)

// NewClient opens a Firestore client through the Firebase app. The
// credentials file is optional so the emulator and ambient credentials work.
func NewClient(ctx context.Context, cfg *config.Config) (*firestore.Client, error) {
	var opts []option.ClientOption
	if cfg.FirestoreCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirestoreCredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirestoreProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("open firestore: %w", err)
	}
	return client, nil
}

// AccountCollections maps each partition to its collection name.
func AccountCollections(tables config.Collections) map[domain.Partition]string {
	return map[domain.Partition]string{
		domain.PartitionAdmins:     tables.Admins,
		domain.PartitionLibrarians: tables.Librarians,
		domain.PartitionUsers:      tables.Users,
	}
}
