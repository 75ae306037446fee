// refresh управляет жизненным циклом refresh-токенов: выпуск, проверка,
// одноразовая ротация и отзыв.
//
// Состояния записи: Active → Rotated (ротация) | Revoked (logout, сброс пароля,
// реакция на повторное предъявление) | Expired (по часам, вычисляется при чтении).
// Все три конечны: запись никогда не возвращается в Active.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pribylovaa/paleta/internal/config"
	"github.com/pribylovaa/paleta/internal/models"
	"github.com/pribylovaa/paleta/internal/pkg/log"
	"github.com/pribylovaa/paleta/internal/secrets"
	"github.com/pribylovaa/paleta/internal/storage"
)

// maxIssueAttempts — число попыток выпустить секрет с уникальным хэшем.
const maxIssueAttempts = 5

var (
	// ErrRefreshInvalid — секрет неизвестен или отозван. Причина наружу не раскрывается.
	ErrRefreshInvalid = errors.New("refresh token invalid")
	// ErrRefreshExpired — срок действия истёк.
	ErrRefreshExpired = errors.New("refresh token expired")
	// ErrRefreshReused — предъявлен уже ротированный секрет; частный случай ErrRefreshInvalid.
	ErrRefreshReused = fmt.Errorf("%w: already rotated", ErrRefreshInvalid)
	// ErrCollision — исчерпаны попытки сгенерировать секрет с уникальным хэшем.
	ErrCollision = errors.New("refresh token collision")
)

// Device — устройство, для которого выпускается сессия.
type Device struct {
	ID   string
	Name string
}

// Options — параметры хранилища refresh-токенов.
type Options struct {
	// TTL — срок жизни; меньше суток поднимается до суток.
	TTL time.Duration
	// ReusePolicy — реакция на повторное предъявление ротированного секрета (config.ReusePolicy*).
	ReusePolicy string
}

// Rotation — результат успешной ротации.
type Rotation struct {
	UserID int64
	// Raw — новый секрет; возвращается клиенту один раз.
	Raw    string
	Record *models.RefreshToken
}

// Store — операции над refresh-токенами поверх storage.Storage.
type Store struct {
	storage  storage.Storage
	ttl      time.Duration
	policy   string
	newToken func() (string, error)
}

// New создаёт Store.
func New(st storage.Storage, opts Options) *Store {
	policy := opts.ReusePolicy
	if policy == "" {
		policy = config.ReusePolicyReject
	}

	return &Store{
		storage:  st,
		ttl:      max(opts.TTL, 24*time.Hour),
		policy:   policy,
		newToken: secrets.NewToken,
	}
}

// With возвращает копию Store, работающую через переданное хранилище
// (например, открытую транзакцию).
func (s *Store) With(st storage.Storage) *Store {
	cp := *s
	cp.storage = st
	return &cp
}

// Issue выпускает новый секрет для пользователя и устройства.
// Сырой секрет возвращается один раз; хранится только его хэш.
func (s *Store) Issue(ctx context.Context, userID int64, dev Device, now time.Time) (string, error) {
	const op = "refresh.store.Issue"

	raw, _, err := s.issue(ctx, s.storage, userID, dev, now)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return raw, nil
}

// GetActive возвращает активную запись по сырому секрету.
// Неизвестный и отозванный секреты неразличимы снаружи: оба дают ErrRefreshInvalid.
func (s *Store) GetActive(ctx context.Context, raw string, now time.Time) (*models.RefreshToken, error) {
	const op = "refresh.store.GetActive"

	if raw == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrRefreshInvalid)
	}

	token, err := s.storage.RefreshTokenByHash(ctx, secrets.HashToken(raw))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrRefreshInvalid)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := checkActive(token, now); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// Rotate атомарно расходует предъявленный секрет и выпускает преемника
// для того же пользователя и переданного устройства.
//
// Запись читается с блокировкой, поэтому из двух конкурентных ротаций одного
// секрета успешна ровно одна; вторая получает ErrRefreshInvalid.
// Повторное предъявление ротированного секрета дополнительно запускает
// политику реакции (см. Options.ReusePolicy) уже после отката транзакции.
func (s *Store) Rotate(ctx context.Context, raw string, dev Device, now time.Time) (*Rotation, error) {
	const op = "refresh.store.Rotate"

	if raw == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrRefreshInvalid)
	}

	var (
		out    *Rotation
		reused *models.RefreshToken
	)

	err := s.storage.InTx(ctx, func(ctx context.Context, tx storage.Storage) error {
		cur, err := tx.LockRefreshToken(ctx, secrets.HashToken(raw))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrRefreshInvalid
			}

			return err
		}

		if err := checkActive(cur, now); err != nil {
			if cur.Rotated() {
				reused = cur
				return ErrRefreshReused
			}

			return err
		}

		nextRaw, next, err := s.issue(ctx, tx, cur.UserID, dev, now)
		if err != nil {
			return err
		}

		if err := tx.MarkRefreshTokenRotated(ctx, cur.ID, next.ID, now); err != nil {
			return err
		}

		out = &Rotation{UserID: cur.UserID, Raw: nextRaw, Record: next}
		return nil
	})
	if err != nil {
		if reused != nil {
			s.onReuse(ctx, reused, now)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// Revoke идемпотентно отзывает секрет. Возвращает, существовала ли запись вообще,
// поэтому повторный logout тем же токеном безопасен.
func (s *Store) Revoke(ctx context.Context, raw string, now time.Time) (bool, error) {
	const op = "refresh.store.Revoke"

	if raw == "" {
		return false, nil
	}

	found, err := s.storage.RevokeRefreshToken(ctx, secrets.HashToken(raw), now)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return found, nil
}

// RevokeAll отзывает все активные сессии пользователя.
func (s *Store) RevokeAll(ctx context.Context, userID int64, now time.Time) (int64, error) {
	const op = "refresh.store.RevokeAll"

	n, err := s.storage.RevokeUserRefreshTokens(ctx, userID, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

func (s *Store) issue(ctx context.Context, st storage.Storage, userID int64, dev Device, now time.Time) (string, *models.RefreshToken, error) {
	lg := log.From(ctx)

	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		raw, err := s.newToken()
		if err != nil {
			return "", nil, err
		}

		token := &models.RefreshToken{
			UserID:     userID,
			TokenHash:  secrets.HashToken(raw),
			DeviceID:   dev.ID,
			DeviceName: dev.Name,
			CreatedAt:  now,
			ExpiresAt:  now.Add(s.ttl),
			LastUsedAt: now,
		}

		if err := st.SaveRefreshToken(ctx, token); err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				// Редкая коллизия — пробуем сгенерировать заново.
				continue
			}

			return "", nil, err
		}

		return raw, token, nil
	}

	lg.Error("refresh_collision_exceeded", slog.Int64("user_id", userID))

	return "", nil, ErrCollision
}

// onReuse применяет политику к цепочке, в которой предъявлен ротированный секрет.
// Ошибки только логируются: клиент в любом случае получает ErrRefreshInvalid.
func (s *Store) onReuse(ctx context.Context, token *models.RefreshToken, now time.Time) {
	const op = "refresh.store.onReuse"

	lg := log.From(ctx).With(
		slog.String("op", op),
		slog.Int64("user_id", token.UserID),
		slog.Int64("token_id", token.ID),
		slog.String("policy", s.policy),
	)

	var (
		n   int64
		err error
	)

	switch s.policy {
	case config.ReusePolicyRevokeLineage:
		n, err = s.storage.RevokeRefreshLineage(ctx, token.ID, now)
	case config.ReusePolicyRevokeUser:
		n, err = s.storage.RevokeUserRefreshTokens(ctx, token.UserID, now)
	default:
		lg.Warn("refresh_reuse_detected")
		return
	}

	if err != nil {
		lg.Error("refresh_reuse_revoke_failed", slog.String("err", err.Error()))
		return
	}

	lg.Warn("refresh_reuse_detected", slog.Int64("revoked", n))
}

func checkActive(token *models.RefreshToken, now time.Time) error {
	if token.Revoked() {
		return ErrRefreshInvalid
	}

	if token.Expired(now) {
		return ErrRefreshExpired
	}

	return nil
}
