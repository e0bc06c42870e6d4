package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/library-access-api/internal/domain"
)

// OTPRepo keeps one document per identity; the document ID is the identity.
type OTPRepo struct {
	client     *firestore.Client
	collection string
}

func NewOTPRepo(client *firestore.Client, collection string) *OTPRepo {
	return &OTPRepo{client: client, collection: collection}
}

func (r *OTPRepo) doc(identity string) *firestore.DocumentRef {
	return r.client.Collection(r.collection).Doc(identity)
}

func (r *OTPRepo) Put(ctx context.Context, rec *domain.OTPRecord) error {
	_, err := r.doc(rec.Identity).Set(ctx, rec)
	return err
}

func (r *OTPRepo) Get(ctx context.Context, identity string) (*domain.OTPRecord, error) {
	snap, err := r.doc(identity).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	return decodeOTP(snap)
}

// Consume deletes the document inside a transaction after re-checking code
// and expiry against the transactional read.
func (r *OTPRepo) Consume(ctx context.Context, identity, code string, now time.Time) error {
	ref := r.doc(identity)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("otp not found: %w", domain.ErrNotFound)
			}
			return err
		}
		rec, err := decodeOTP(snap)
		if err != nil {
			return err
		}
		if !rec.Accepts(code, now) {
			return fmt.Errorf("otp changed: %w", domain.ErrConditionFailed)
		}
		return tx.Delete(ref)
	})
}

func decodeOTP(snap *firestore.DocumentSnapshot) (*domain.OTPRecord, error) {
	var rec domain.OTPRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("decode otp: %w", err)
	}
	rec.Identity = snap.Ref.ID
	return &rec, nil
}
