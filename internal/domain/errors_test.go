package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_Nil(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestKindOf_WrappedSentinels(t *testing.T) {
	cases := map[error]Kind{
		fmt.Errorf("admin: %w", ErrNotFound):                         KindNotFound,
		fmt.Errorf("role gate: %w", ErrUnauthorized):                 KindUnauthorized,
		fmt.Errorf("libraries differ: %w", ErrCrossTenant):           KindCrossTenant,
		fmt.Errorf("%w: %w", ErrStoreWrite, errors.New("throttled")): KindStoreWrite,
		fmt.Errorf("%w: %w", ErrStoreRead, errors.New("timeout")):    KindStoreRead,
		fmt.Errorf("send: %w", ErrEmailDispatch):                     KindEmailDispatch,
	}
	for err, want := range cases {
		assert.Equal(t, want, KindOf(err), err.Error())
	}
}

func TestKindOf_OTPFailureWinsOverNotFound(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrInvalidOrExpiredOTP, ErrNotFound)
	assert.Equal(t, KindInvalidOrExpiredOTP, KindOf(err))
}

func TestKindOf_UnknownIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestParsePartition(t *testing.T) {
	p, err := ParsePartition("librarians")
	assert.NoError(t, err)
	assert.Equal(t, PartitionLibrarians, p)
	assert.Equal(t, RoleLibrarian, p.Role())

	_, err = ParsePartition("invalid")
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("super_admin")
	assert.True(t, ok)
	assert.Equal(t, RoleSuperAdmin, r)

	_, ok = ParseRole("root")
	assert.False(t, ok)
}
