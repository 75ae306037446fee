package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/paleta/internal/config"
	"github.com/pribylovaa/paleta/internal/metrics"
	"github.com/pribylovaa/paleta/internal/notify"
	"github.com/pribylovaa/paleta/internal/ratelimit"
	"github.com/pribylovaa/paleta/internal/storage/memory"
	"github.com/pribylovaa/paleta/internal/storage/mocks"
)

const (
	testPassword = "Str0ng!Passw0rd"
	testEmail    = "alice@example.com"
)

func testCfg() *config.Config {
	return &config.Config{
		Env: "local",
		Auth: config.AuthConfig{
			SigningSecret:        "unit-secret",
			AccessTTLMinutes:     15,
			RefreshTTLDays:       30,
			Issuer:               "paleta",
			Audience:             "paleta-mobile",
			ResetCodeTTLMinutes:  15,
			ResetCodeMaxAttempts: 5,
			RefreshReusePolicy:   config.ReusePolicyReject,
		},
		Limits: config.LimitsConfig{Default: 20, Max: 50},
		Notify: config.NotifyConfig{PhoneRegion: "RU"},
	}
}

// clock — управляемое время для тестов.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// captureSender запоминает отправленные коды.
type captureSender struct {
	mu   sync.Mutex
	msgs []notify.Message
	err  error
}

func (c *captureSender) Send(_ context.Context, m notify.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, m)
	return c.err
}

func (c *captureSender) last(t *testing.T) notify.Message {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.msgs)
	return c.msgs[len(c.msgs)-1]
}

// denyLimiter отказывает в одной корзине.
type denyLimiter struct{ bucket string }

func (d denyLimiter) Allow(_ context.Context, b ratelimit.Bucket, _ string) (bool, error) {
	return b.Name != d.bucket, nil
}

type env struct {
	svc    *Service
	st     *memory.Storage
	clock  *clock
	sender *captureSender
	reg    *prometheus.Registry
}

func newEnv(t *testing.T, opts ...Option) *env {
	t.Helper()

	st := memory.New()
	c := newClock()
	snd := &captureSender{}
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	base := []Option{
		WithClock(c.Now),
		WithSender(snd),
		WithMetrics(m),
		WithBcryptCost(bcrypt.MinCost),
	}

	svc, err := New(st, testCfg(), append(base, opts...)...)
	require.NoError(t, err)

	return &env{svc: svc, st: st, clock: c, sender: snd, reg: reg}
}

func (e *env) register(t *testing.T, username string) int64 {
	t.Helper()
	u, err := e.svc.Register(context.Background(), RegisterInput{
		Username: username,
		Password: testPassword,
		Email:    username + "@example.com",
	})
	require.NoError(t, err)
	return u.ID
}

func newMockSvc(t *testing.T) (*Service, *mocks.MockStorage) {
	t.Helper()
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStorage(ctrl)
	svc, err := New(st, testCfg(), WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)
	return svc, st
}

func TestNew_EmptySecret(t *testing.T) {
	t.Parallel()

	cfg := testCfg()
	cfg.Auth.SigningSecret = ""

	_, err := New(memory.New(), cfg)
	require.Error(t, err)
}

func TestReady(t *testing.T) {
	t.Parallel()

	svc, st := newMockSvc(t)
	boom := errors.New("db down")
	st.EXPECT().Ping(gomock.Any()).Return(boom)

	require.ErrorIs(t, svc.Ready(context.Background()), boom)
}

func TestReady_PingsRedisLimiter(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	e := newEnv(t, WithLimiter(ratelimit.NewRedisWithClient(rdb, "")))
	require.NoError(t, e.svc.Ready(context.Background()))

	mr.Close()
	require.Error(t, e.svc.Ready(context.Background()))
}

func TestValidationError_Is(t *testing.T) {
	t.Parallel()

	err := invalid("bad %s", "thing")
	require.ErrorIs(t, err, ErrValidation)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "bad thing", ve.Message)
}

func TestCleanupResetCodes(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "alice")

	require.NoError(t, e.svc.RequestResetCode(ctx, ResetRequestInput{Channel: "email", Contact: testEmail}))

	n, err := e.svc.CleanupResetCodes(ctx, e.clock.Now().Add(time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	svc, st := newMockSvc(t)
	boom := errors.New("db")
	st.EXPECT().DeleteStaleResetCodes(gomock.Any(), gomock.Any()).Return(int64(0), boom)
	_, err = svc.CleanupResetCodes(ctx, time.Now())
	require.ErrorIs(t, err, boom)
}
