package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pribylovaa/paleta/internal/models"
	"github.com/pribylovaa/paleta/internal/storage"
)

// SaveResetCode сохраняет новый код сброса.
func (s *Storage) SaveResetCode(ctx context.Context, code *models.PasswordResetCode) error {
	const op = "storage.postgres.SaveResetCode"

	err := s.db.QueryRow(ctx, `
		INSERT INTO password_reset_codes(user_id, channel, destination, code_hash, attempts, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`,
		code.UserID,
		string(code.Channel),
		code.Destination,
		code.CodeHash,
		code.Attempts,
		code.CreatedAt,
		code.ExpiresAt,
	).Scan(&code.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ActiveResetCode возвращает самый новый активный код для (user, channel, destination).
func (s *Storage) ActiveResetCode(ctx context.Context, userID int64, channel models.Channel, destination string, now time.Time) (*models.PasswordResetCode, error) {
	const op = "storage.postgres.ActiveResetCode"

	var (
		code models.PasswordResetCode
		ch   string
	)
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, channel, destination, code_hash, attempts, created_at, expires_at, used_at
		FROM password_reset_codes
		WHERE user_id = $1 AND channel = $2 AND destination = $3
		  AND used_at IS NULL AND expires_at > $4
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, userID, string(channel), destination, now).Scan(
		&code.ID,
		&code.UserID,
		&ch,
		&code.Destination,
		&code.CodeHash,
		&code.Attempts,
		&code.CreatedAt,
		&code.ExpiresAt,
		&code.UsedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	code.Channel = models.Channel(ch)
	code.CreatedAt = code.CreatedAt.UTC()
	code.ExpiresAt = code.ExpiresAt.UTC()

	return &code, nil
}

// ReserveResetAttempt — условный инкремент: две параллельные попытки
// не могут обе пройти по устаревшему значению счётчика.
func (s *Storage) ReserveResetAttempt(ctx context.Context, id int64, maxAttempts int) (int, error) {
	const op = "storage.postgres.ReserveResetAttempt"

	var attempts int
	err := s.db.QueryRow(ctx, `
		UPDATE password_reset_codes
		SET attempts = attempts + 1
		WHERE id = $1 AND attempts < $2
		RETURNING attempts
	`, id, maxAttempts).Scan(&attempts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", op, storage.ErrAttemptsExhausted)
		}

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return attempts, nil
}

// StaleResetCodeExists ищет у пользователя неактивный код с таким хэшем.
func (s *Storage) StaleResetCodeExists(ctx context.Context, userID int64, codeHash string, now time.Time) (bool, error) {
	const op = "storage.postgres.StaleResetCodeExists"

	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM password_reset_codes
			WHERE user_id = $1 AND code_hash = $2
			  AND (used_at IS NOT NULL OR expires_at <= $3)
		)
	`, userID, codeHash, now).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

// MarkResetCodeUsed помечает код использованным.
func (s *Storage) MarkResetCodeUsed(ctx context.Context, id int64, now time.Time) error {
	const op = "storage.postgres.MarkResetCodeUsed"

	tag, err := s.db.Exec(ctx, `
		UPDATE password_reset_codes
		SET used_at = $2
		WHERE id = $1 AND used_at IS NULL
	`, id, now)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// SupersedeResetCodes помечает использованными все активные коды пользователя.
func (s *Storage) SupersedeResetCodes(ctx context.Context, userID int64, now time.Time) (int64, error) {
	const op = "storage.postgres.SupersedeResetCodes"

	tag, err := s.db.Exec(ctx, `
		UPDATE password_reset_codes
		SET used_at = $2
		WHERE user_id = $1 AND used_at IS NULL AND expires_at > $2
	`, userID, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return tag.RowsAffected(), nil
}

// DeleteStaleResetCodes удаляет коды, отработавшие раньше before.
func (s *Storage) DeleteStaleResetCodes(ctx context.Context, before time.Time) (int64, error) {
	const op = "storage.postgres.DeleteStaleResetCodes"

	tag, err := s.db.Exec(ctx, `
		DELETE FROM password_reset_codes
		WHERE expires_at <= $1 OR used_at <= $1
	`, before)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return tag.RowsAffected(), nil
}
