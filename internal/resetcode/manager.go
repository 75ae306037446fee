// resetcode выпускает и проверяет одноразовые коды сброса пароля
// с ограниченным числом попыток.
package resetcode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pribylovaa/paleta/internal/models"
	"github.com/pribylovaa/paleta/internal/pkg/log"
	"github.com/pribylovaa/paleta/internal/pkg/redact"
	"github.com/pribylovaa/paleta/internal/secrets"
	"github.com/pribylovaa/paleta/internal/storage"
)

const (
	minTTL         = 5 * time.Minute
	minMaxAttempts = 3
)

var (
	// ErrCodeNotFound — нет активного кода для (пользователь, канал, адрес),
	// либо предъявлен код, уже вытесненный более новым.
	ErrCodeNotFound = errors.New("reset code not found")
	// ErrCodeMismatch — код не совпал, попытка засчитана.
	ErrCodeMismatch = errors.New("reset code mismatch")
	// ErrAttemptsExceeded — исчерпан лимит попыток.
	ErrAttemptsExceeded = errors.New("reset code attempts exceeded")
)

// Options — параметры менеджера кодов.
type Options struct {
	// TTL — срок жизни кода; меньше пяти минут поднимается до пяти.
	TTL time.Duration
	// MaxAttempts — предел попыток ввода; меньше трёх поднимается до трёх.
	MaxAttempts int
}

// VerifyInput — предъявленный код и адрес, на который он был отправлен.
type VerifyInput struct {
	UserID      int64
	Channel     models.Channel
	Destination string
	Code        string
}

// MatchFunc выполняется в той же транзакции, что и погашение кода.
// Ошибка откатывает всё, включая отметку об использовании.
type MatchFunc func(ctx context.Context, tx storage.Storage) error

// Manager — выпуск и проверка кодов поверх storage.Storage.
type Manager struct {
	storage     storage.Storage
	hasher      *secrets.Hasher
	ttl         time.Duration
	maxAttempts int
	newCode     func() (string, error)
}

// New создаёт Manager.
func New(st storage.Storage, hasher *secrets.Hasher, opts Options) *Manager {
	return &Manager{
		storage:     st,
		hasher:      hasher,
		ttl:         max(opts.TTL, minTTL),
		maxAttempts: max(opts.MaxAttempts, minMaxAttempts),
		newCode:     secrets.NewCode,
	}
}

// MaxAttempts возвращает действующий предел попыток.
func (m *Manager) MaxAttempts() int { return m.maxAttempts }

// Issue выпускает новый код: все активные коды пользователя вытесняются,
// новый сохраняется в той же транзакции. Открытый код возвращается
// только вызывающему для доставки.
func (m *Manager) Issue(ctx context.Context, userID int64, channel models.Channel, destination string, now time.Time) (string, error) {
	const op = "resetcode.manager.Issue"

	code, err := m.newCode()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	rec := &models.PasswordResetCode{
		UserID:      userID,
		Channel:     channel,
		Destination: destination,
		CodeHash:    m.hasher.HashCode(userID, code),
		CreatedAt:   now,
		ExpiresAt:   now.Add(m.ttl),
	}

	var superseded int64
	err = m.storage.InTx(ctx, func(ctx context.Context, tx storage.Storage) error {
		// Без блокировки две параллельные выдачи не видят вставки друг друга
		// и обе оставляют активный код.
		if err := tx.LockUser(ctx, userID); err != nil {
			return err
		}

		n, err := tx.SupersedeResetCodes(ctx, userID, now)
		if err != nil {
			return err
		}
		superseded = n

		return tx.SaveResetCode(ctx, rec)
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("reset_code_issued",
		slog.Int64("user_id", userID),
		slog.String("channel", string(channel)),
		slog.String("destination", redact.Destination(destination)),
		slog.Int64("superseded", superseded),
	)

	return code, nil
}

// Verify проверяет код. Код, совпавший с уже вытесненным, сразу даёт
// ErrCodeNotFound и попытку не тратит. Остальные попытки резервируются
// условным инкрементом, поэтому счётчик не превышает предел даже при
// конкурентных запросах. При совпадении код гасится, остальные активные коды
// пользователя вытесняются и выполняется onMatch; всё в одной транзакции.
func (m *Manager) Verify(ctx context.Context, in VerifyInput, now time.Time, onMatch MatchFunc) error {
	const op = "resetcode.manager.Verify"

	lg := log.From(ctx).With(
		slog.String("op", op),
		slog.Int64("user_id", in.UserID),
		slog.String("channel", string(in.Channel)),
	)

	rec, err := m.storage.ActiveResetCode(ctx, in.UserID, in.Channel, in.Destination, now)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrCodeNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	// Вытесненный код не тратит попытку действующего.
	hash := m.hasher.HashCode(in.UserID, in.Code)
	matched := secrets.Equal(hash, rec.CodeHash)
	if !matched {
		stale, err := m.storage.StaleResetCodeExists(ctx, in.UserID, hash, now)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if stale {
			lg.Info("reset_code_superseded")
			return fmt.Errorf("%s: %w", op, ErrCodeNotFound)
		}
	}

	attempts, err := m.storage.ReserveResetAttempt(ctx, rec.ID, m.maxAttempts)
	if err != nil {
		if errors.Is(err, storage.ErrAttemptsExhausted) {
			lg.Warn("reset_code_attempts_exceeded")
			return fmt.Errorf("%s: %w", op, ErrAttemptsExceeded)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if attempts >= m.maxAttempts {
		lg.Warn("reset_code_attempts_exceeded", slog.Int("attempts", attempts))
		return fmt.Errorf("%s: %w", op, ErrAttemptsExceeded)
	}

	if !matched {
		lg.Info("reset_code_mismatch", slog.Int("attempts", attempts))
		return fmt.Errorf("%s: %w", op, ErrCodeMismatch)
	}

	err = m.storage.InTx(ctx, func(ctx context.Context, tx storage.Storage) error {
		if err := tx.LockUser(ctx, in.UserID); err != nil {
			return err
		}

		if err := tx.MarkResetCodeUsed(ctx, rec.ID, now); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				// Код погасил конкурентный запрос.
				return ErrCodeNotFound
			}

			return err
		}

		if _, err := tx.SupersedeResetCodes(ctx, in.UserID, now); err != nil {
			return err
		}

		if onMatch == nil {
			return nil
		}

		return onMatch(ctx, tx)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("reset_code_consumed")

	return nil
}

// Cleanup удаляет коды, истёкшие или использованные раньше before.
func (m *Manager) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	const op = "resetcode.manager.Cleanup"

	n, err := m.storage.DeleteStaleResetCodes(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}
