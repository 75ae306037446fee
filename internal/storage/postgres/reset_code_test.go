package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/paleta/internal/models"
	"github.com/pribylovaa/paleta/internal/resetcode"
	"github.com/pribylovaa/paleta/internal/secrets"
	"github.com/pribylovaa/paleta/internal/storage"
)

func saveCode(t *testing.T, st *Storage, userID int64, hash string, createdAt time.Time) *models.PasswordResetCode {
	t.Helper()
	c := &models.PasswordResetCode{
		UserID:      userID,
		Channel:     models.ChannelEmail,
		Destination: "reset@example.com",
		CodeHash:    hash,
		CreatedAt:   createdAt,
		ExpiresAt:   createdAt.Add(15 * time.Minute),
	}
	require.NoError(t, st.SaveResetCode(context.Background(), c))
	return c
}

func TestIntegration_ResetCode_NewestActiveAndSupersede(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()
	u := seedUser(t, st, "reset")
	now := time.Now().UTC()

	first := saveCode(t, st, u.ID, "h1", now.Add(-time.Minute))
	second := saveCode(t, st, u.ID, "h2", now)

	got, err := st.ActiveResetCode(ctx, u.ID, models.ChannelEmail, "reset@example.com", now)
	require.NoError(t, err)
	require.Equal(t, second.ID, got.ID)

	n, err := st.SupersedeResetCodes(ctx, u.ID, now)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	_, err = st.ActiveResetCode(ctx, u.ID, models.ChannelEmail, "reset@example.com", now)
	require.ErrorIs(t, err, storage.ErrNotFound)

	stale, err := st.StaleResetCodeExists(ctx, u.ID, first.CodeHash, now)
	require.NoError(t, err)
	require.True(t, stale)

	stale, err = st.StaleResetCodeExists(ctx, u.ID, "unknown", now)
	require.NoError(t, err)
	require.False(t, stale)
}

func TestIntegration_ResetCode_ReserveAttemptBounded(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()
	u := seedUser(t, st, "attempts")
	c := saveCode(t, st, u.ID, "h", time.Now().UTC())

	for i := 1; i <= 3; i++ {
		n, err := st.ReserveResetAttempt(ctx, c.ID, 3)
		require.NoError(t, err)
		require.Equal(t, i, n)
	}

	_, err := st.ReserveResetAttempt(ctx, c.ID, 3)
	require.ErrorIs(t, err, storage.ErrAttemptsExhausted)
}

func TestIntegration_ResetCode_MarkUsedAndCleanup(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()
	u := seedUser(t, st, "cleanup")
	now := time.Now().UTC()
	c := saveCode(t, st, u.ID, "h", now)

	require.NoError(t, st.MarkResetCodeUsed(ctx, c.ID, now))
	require.ErrorIs(t, st.MarkResetCodeUsed(ctx, c.ID, now), storage.ErrNotFound)

	n, err := st.DeleteStaleResetCodes(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = st.DeleteStaleResetCodes(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestIntegration_ResetCode_ConcurrentIssueLeavesOneActive(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()
	u := seedUser(t, st, "concurrent")

	h, err := secrets.NewHasher("signing-secret")
	require.NoError(t, err)
	m := resetcode.New(st, h, resetcode.Options{TTL: 15 * time.Minute, MaxAttempts: 5})

	const n = 16
	now := time.Now().UTC()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := m.Issue(ctx, u.ID, models.ChannelEmail, u.Email, now); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()
	require.Empty(t, errs)

	var active, total int
	err = st.pool.QueryRow(ctx,
		`SELECT count(*) FILTER (WHERE used_at IS NULL AND expires_at > $2), count(*)
		   FROM password_reset_codes WHERE user_id = $1`,
		u.ID, now,
	).Scan(&active, &total)
	require.NoError(t, err)
	require.Equal(t, 1, active)
	require.Equal(t, n, total)
}

func TestIntegration_LockUser(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()
	u := seedUser(t, st, "locked")

	require.NoError(t, st.LockUser(ctx, u.ID))
	require.ErrorIs(t, st.LockUser(ctx, u.ID+1000), storage.ErrNotFound)

	// Вторая транзакция ждёт, пока первая держит блокировку.
	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- st.InTx(ctx, func(ctx context.Context, tx storage.Storage) error {
			err := tx.LockUser(ctx, u.ID)
			close(locked)
			if err != nil {
				return err
			}
			<-release
			return nil
		})
	}()
	<-locked

	waitCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	err := st.InTx(waitCtx, func(ctx context.Context, tx storage.Storage) error {
		return tx.LockUser(ctx, u.ID)
	})
	require.Error(t, err)

	close(release)
	require.NoError(t, <-done)
	require.NoError(t, st.InTx(ctx, func(ctx context.Context, tx storage.Storage) error {
		return tx.LockUser(ctx, u.ID)
	}))
}
