package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/library-access-api/internal/domain"
)

// AccountRepo stores accounts as documents keyed by account ID, one
// collection per partition.
type AccountRepo struct {
	client      *firestore.Client
	collections map[domain.Partition]string
}

func NewAccountRepo(client *firestore.Client, collections map[domain.Partition]string) *AccountRepo {
	return &AccountRepo{client: client, collections: collections}
}

func (r *AccountRepo) collection(p domain.Partition) (*firestore.CollectionRef, error) {
	name, ok := r.collections[p]
	if !ok {
		return nil, fmt.Errorf("no collection for %q: %w", p, domain.ErrInvalidTarget)
	}
	return r.client.Collection(name), nil
}

func (r *AccountRepo) Put(ctx context.Context, p domain.Partition, a *domain.Account) error {
	col, err := r.collection(p)
	if err != nil {
		return err
	}
	_, err = col.Doc(a.AccountID).Set(ctx, a)
	return err
}

func (r *AccountRepo) FindByEmail(ctx context.Context, p domain.Partition, email string) (*domain.Account, error) {
	col, err := r.collection(p)
	if err != nil {
		return nil, err
	}
	iter := col.Where("email", "==", email).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("account not found in %s: %w", p, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return decodeAccount(snap)
}

// FindActiveByEmail returns the first account with email whose isDeleted
// flag is false.
func (r *AccountRepo) FindActiveByEmail(ctx context.Context, p domain.Partition, email string) (*domain.Account, error) {
	col, err := r.collection(p)
	if err != nil {
		return nil, err
	}
	iter := col.Where("email", "==", email).Where("isDeleted", "==", false).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("no active account in %s: %w", p, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return decodeAccount(snap)
}

// SoftDelete flags the document inside a transaction. When library is
// non-nil the stored libraryId must still match it.
func (r *AccountRepo) SoftDelete(ctx context.Context, p domain.Partition, accountID string, library *string) error {
	col, err := r.collection(p)
	if err != nil {
		return err
	}
	ref := col.Doc(accountID)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("account not found: %w", domain.ErrNotFound)
			}
			return err
		}
		if library != nil {
			current, err := decodeAccount(snap)
			if err != nil {
				return err
			}
			if current.LibraryID != *library {
				return fmt.Errorf("account moved library: %w", domain.ErrConditionFailed)
			}
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "isDeleted", Value: true},
			{Path: "updatedAt", Value: time.Now().UTC()},
		})
	})
}

func decodeAccount(snap *firestore.DocumentSnapshot) (*domain.Account, error) {
	var a domain.Account
	if err := snap.DataTo(&a); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	a.AccountID = snap.Ref.ID
	return &a, nil
}
