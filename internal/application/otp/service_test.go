package otp

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/library-access-api/internal/domain"
	"github.com/library-access-api/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockOTPStore struct{ mock.Mock }

func (m *mockOTPStore) Put(ctx context.Context, r *domain.OTPRecord) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockOTPStore) Get(ctx context.Context, identity string) (*domain.OTPRecord, error) {
	args := m.Called(ctx, identity)
	if r, _ := args.Get(0).(*domain.OTPRecord); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockOTPStore) Consume(ctx context.Context, identity, code string, now time.Time) error {
	return m.Called(ctx, identity, code, now).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

// --- helpers ---

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// sequence returns a generator yielding codes in order.
func sequence(codes ...string) func(int) (string, error) {
	i := 0
	return func(int) (string, error) {
		c := codes[i%len(codes)]
		i++
		return c, nil
	}
}

func newMemoryService(clock *fakeClock, gen func(int) (string, error)) (Service, *memory.OTPRepo, *mockMailer) {
	repo := memory.NewOTPRepo()
	ml := &mockMailer{}
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc := NewService(ServiceDeps{
		OTPRepo:  repo,
		Mailer:   ml,
		Now:      clock.Now,
		Generate: gen,
	})
	return svc, repo, ml
}

const identity = "reader@library.org"

// --- GenerateAndIssue ---

func TestGenerateAndIssue_PersistsThenEmails(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	svc, repo, ml := newMemoryService(clock, sequence("004213"))

	require.NoError(t, svc.GenerateAndIssue(context.Background(), identity))

	rec, err := repo.Get(context.Background(), identity)
	require.NoError(t, err)
	assert.Equal(t, "004213", rec.Code)
	assert.Equal(t, clock.t.Add(300*time.Second), rec.ExpiresAt)
	ml.AssertCalled(t, "SendEmail", identity, emailSubject,
		"Your verification code is 004213. It is valid for 5 minutes.")
	ml.AssertNumberOfCalls(t, "SendEmail", 1)
}

func TestGenerateAndIssue_StoreFailure_SkipsEmail(t *testing.T) {
	store := &mockOTPStore{}
	store.On("Put", mock.Anything, mock.AnythingOfType("*domain.OTPRecord")).Return(errors.New("throttled"))
	ml := &mockMailer{}

	svc := NewService(ServiceDeps{OTPRepo: store, Mailer: ml})
	err := svc.GenerateAndIssue(context.Background(), identity)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreWrite))
	ml.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateAndIssue_EmailFailure_RecordRemains(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	repo := memory.NewOTPRepo()
	ml := &mockMailer{}
	ml.On("SendEmail", identity, mock.Anything, mock.Anything).Return(errors.New("relay down"))

	svc := NewService(ServiceDeps{OTPRepo: repo, Mailer: ml, Now: clock.Now, Generate: sequence("111111")})
	err := svc.GenerateAndIssue(context.Background(), identity)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmailDispatch))
	ml.AssertNumberOfCalls(t, "SendEmail", 1)

	// The persisted code is still technically valid.
	require.NoError(t, svc.Verify(context.Background(), identity, "111111"))
}

func TestGenerateAndIssue_GeneratorFailure(t *testing.T) {
	store := &mockOTPStore{}
	svc := NewService(ServiceDeps{
		OTPRepo:  store,
		Generate: func(int) (string, error) { return "", errors.New("entropy") },
	})
	require.Error(t, svc.GenerateAndIssue(context.Background(), identity))
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

// --- Verify ---

func TestVerify_SucceedsExactlyOnce(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	svc, _, _ := newMemoryService(clock, sequence("987654"))
	ctx := context.Background()

	require.NoError(t, svc.GenerateAndIssue(ctx, identity))
	clock.Advance(299 * time.Second)

	require.NoError(t, svc.Verify(ctx, identity, "987654"))
	err := svc.Verify(ctx, identity, "987654")
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredOTP)
}

func TestVerify_WrongCode_LeavesRecordUntouched(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	svc, repo, _ := newMemoryService(clock, sequence("000042"))
	ctx := context.Background()
	require.NoError(t, svc.GenerateAndIssue(ctx, identity))
	before, err := repo.Get(ctx, identity)
	require.NoError(t, err)

	for _, wrong := range []string{"000043", "42", "", "0000420", "999999"} {
		assert.ErrorIs(t, svc.Verify(ctx, identity, wrong), domain.ErrInvalidOrExpiredOTP, wrong)
	}

	after, err := repo.Get(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	require.NoError(t, svc.Verify(ctx, identity, "000042"))
}

func TestVerify_ReissueInvalidatesPreviousCode(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	svc, _, _ := newMemoryService(clock, sequence("111111", "222222"))
	ctx := context.Background()

	require.NoError(t, svc.GenerateAndIssue(ctx, identity))
	require.NoError(t, svc.GenerateAndIssue(ctx, identity))

	assert.ErrorIs(t, svc.Verify(ctx, identity, "111111"), domain.ErrInvalidOrExpiredOTP)
	require.NoError(t, svc.Verify(ctx, identity, "222222"))
}

func TestVerify_AtOrAfterExpiry_Fails(t *testing.T) {
	for _, offset := range []time.Duration{300 * time.Second, 301 * time.Second, time.Hour} {
		clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
		svc, _, _ := newMemoryService(clock, sequence("555555"))
		ctx := context.Background()
		require.NoError(t, svc.GenerateAndIssue(ctx, identity))

		clock.Advance(offset)
		assert.ErrorIs(t, svc.Verify(ctx, identity, "555555"), domain.ErrInvalidOrExpiredOTP, offset.String())
	}
}

func TestVerify_UnknownIdentity(t *testing.T) {
	svc, _, _ := newMemoryService(&fakeClock{t: time.Now()}, sequence("123456"))
	err := svc.Verify(context.Background(), "nobody@library.org", "123456")
	assert.True(t, errors.Is(err, domain.ErrInvalidOrExpiredOTP))
	assert.False(t, errors.Is(err, domain.ErrNotFound), "missing record must look like a wrong code")
}

func TestVerify_IncompleteRecord(t *testing.T) {
	store := &mockOTPStore{}
	store.On("Get", mock.Anything, identity).Return(&domain.OTPRecord{Identity: identity}, nil)

	svc := NewService(ServiceDeps{OTPRepo: store})
	assert.ErrorIs(t, svc.Verify(context.Background(), identity, ""), domain.ErrInvalidOrExpiredOTP)
	store.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerify_StoreReadFailure(t *testing.T) {
	store := &mockOTPStore{}
	store.On("Get", mock.Anything, identity).Return(nil, errors.New("timeout"))

	svc := NewService(ServiceDeps{OTPRepo: store})
	assert.ErrorIs(t, svc.Verify(context.Background(), identity, "123456"), domain.ErrStoreRead)
}

func TestVerify_LostConsumeRace(t *testing.T) {
	now := time.Now()
	store := &mockOTPStore{}
	store.On("Get", mock.Anything, identity).Return(&domain.OTPRecord{
		Identity: identity, Code: "123456", ExpiresAt: now.Add(time.Minute),
	}, nil)
	store.On("Consume", mock.Anything, identity, "123456", now).Return(domain.ErrConditionFailed)

	svc := NewService(ServiceDeps{OTPRepo: store, Now: func() time.Time { return now }})
	assert.ErrorIs(t, svc.Verify(context.Background(), identity, "123456"), domain.ErrInvalidOrExpiredOTP)
	store.AssertExpectations(t)
}

func TestVerify_ConsumeWriteFailure(t *testing.T) {
	now := time.Now()
	store := &mockOTPStore{}
	store.On("Get", mock.Anything, identity).Return(&domain.OTPRecord{
		Identity: identity, Code: "123456", ExpiresAt: now.Add(time.Minute),
	}, nil)
	store.On("Consume", mock.Anything, identity, "123456", now).Return(errors.New("throttled"))

	svc := NewService(ServiceDeps{OTPRepo: store, Now: func() time.Time { return now }})
	assert.ErrorIs(t, svc.Verify(context.Background(), identity, "123456"), domain.ErrStoreWrite)
}

func TestVerify_ConcurrentAttempts_OneWins(t *testing.T) {
	svc, _, _ := newMemoryService(&fakeClock{t: time.Now()}, sequence("314159"))
	ctx := context.Background()
	require.NoError(t, svc.GenerateAndIssue(ctx, identity))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if svc.Verify(ctx, identity, "314159") == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

// --- GenerateCode ---

func TestGenerateCode_ZeroPaddedDigits(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := GenerateCode(6)
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, c := range code {
			require.True(t, c >= '0' && c <= '9', code)
		}
	}
}

func TestGenerateCode_MaxLengthStaysNumeric(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateCode(18)
		require.NoError(t, err)
		require.Len(t, code, 18)
		for _, c := range code {
			require.True(t, c >= '0' && c <= '9', code)
		}
	}
}

func TestGenerateCode_RejectsLengthOutOfRange(t *testing.T) {
	for _, n := range []int{0, -1, 19, 20} {
		_, err := GenerateCode(n)
		assert.Error(t, err, "length %d", n)
	}
}

func TestNewService_OutOfRangeLengthFallsBackToDefault(t *testing.T) {
	for _, n := range []int{20, -3} {
		var got int
		svc := NewService(ServiceDeps{
			OTPRepo: memory.NewOTPRepo(),
			Mailer:  &mockMailer{},
			Length:  n,
			Generate: func(length int) (string, error) {
				got = length
				return "", errors.New("stop")
			},
		})
		_ = svc.GenerateAndIssue(context.Background(), identity)
		assert.Equal(t, defaultLength, got, "configured length %d", n)
	}
}

func TestValidity(t *testing.T) {
	assert.Equal(t, "5 minutes", validity(300*time.Second))
	assert.Equal(t, "1 minute", validity(time.Minute))
	assert.Equal(t, "90 seconds", validity(90*time.Second))
}
