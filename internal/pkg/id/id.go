package id

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// New returns a ULID for a new account. IDs sort by creation time, so a
// seeded partition scans in insertion order.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// CreatedAt recovers the creation time encoded in an ID produced by New.
func CreatedAt(s string) (time.Time, error) {
	u, err := ulid.Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}
