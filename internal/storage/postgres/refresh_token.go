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

const refreshColumns = `id, user_id, token_hash, device_id, COALESCE(device_name, ''),
	created_at, expires_at, last_used_at, revoked_at, replaced_by`

// SaveRefreshToken сохраняет новый refresh-токен в БД.
// Коллизия хэша не прерывает транзакцию: ON CONFLICT DO NOTHING + ErrAlreadyExists.
func (s *Storage) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	const op = "storage.postgres.SaveRefreshToken"

	query := `
		INSERT INTO refresh_tokens(user_id, token_hash, device_id, device_name, created_at, expires_at, last_used_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
		ON CONFLICT (token_hash) DO NOTHING
		RETURNING id
	`

	err := s.db.QueryRow(ctx, query,
		token.UserID,
		token.TokenHash,
		token.DeviceID,
		token.DeviceName,
		token.CreatedAt,
		token.ExpiresAt,
		token.LastUsedAt,
	).Scan(&token.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// RefreshTokenByHash находит refresh-токен по его хэшу.
func (s *Storage) RefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	const op = "storage.postgres.RefreshTokenByHash"

	token, err := s.scanRefresh(ctx, `SELECT `+refreshColumns+` FROM refresh_tokens WHERE token_hash = $1`, hash)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// LockRefreshToken читает запись с блокировкой строки (SELECT ... FOR UPDATE).
// Конкурирующая ротация того же секрета ждёт фиксации и видит уже отозванную запись.
func (s *Storage) LockRefreshToken(ctx context.Context, hash string) (*models.RefreshToken, error) {
	const op = "storage.postgres.LockRefreshToken"

	token, err := s.scanRefresh(ctx, `SELECT `+refreshColumns+` FROM refresh_tokens WHERE token_hash = $1 FOR UPDATE`, hash)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// MarkRefreshTokenRotated отзывает запись и связывает её с преемником.
func (s *Storage) MarkRefreshTokenRotated(ctx context.Context, id, replacedBy int64, now time.Time) error {
	const op = "storage.postgres.MarkRefreshTokenRotated"

	tag, err := s.db.Exec(ctx, `
		UPDATE refresh_tokens
		SET revoked_at = $3, last_used_at = $3, replaced_by = $2
		WHERE id = $1 AND revoked_at IS NULL
	`, id, replacedBy, now)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// RevokeRefreshToken отзывает токен, если он ещё не отозван.
// Возвращает:
//
//	(true, nil)  — запись с таким хэшем существует (отозвана сейчас или ранее);
//	(false, nil) — записи нет.
func (s *Storage) RevokeRefreshToken(ctx context.Context, hash string, now time.Time) (bool, error) {
	const op = "storage.postgres.RevokeRefreshToken"

	var id int64
	err := s.db.QueryRow(ctx, `
		UPDATE refresh_tokens
		SET revoked_at = $2
		WHERE token_hash = $1 AND revoked_at IS NULL
		RETURNING id
	`, hash, now).Scan(&id)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	var exists bool
	err = s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM refresh_tokens WHERE token_hash = $1)`, hash).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

// RevokeRefreshLineage отзывает активных потомков записи по цепочке replaced_by.
func (s *Storage) RevokeRefreshLineage(ctx context.Context, id int64, now time.Time) (int64, error) {
	const op = "storage.postgres.RevokeRefreshLineage"

	tag, err := s.db.Exec(ctx, `
		WITH RECURSIVE chain(id) AS (
			SELECT replaced_by FROM refresh_tokens WHERE id = $1 AND replaced_by IS NOT NULL
			UNION
			SELECT rt.replaced_by
			FROM refresh_tokens rt
			JOIN chain c ON rt.id = c.id
			WHERE rt.replaced_by IS NOT NULL
		)
		UPDATE refresh_tokens
		SET revoked_at = $2
		WHERE id IN (SELECT id FROM chain) AND revoked_at IS NULL
	`, id, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return tag.RowsAffected(), nil
}

// RevokeUserRefreshTokens отзывает все активные сессии пользователя.
func (s *Storage) RevokeUserRefreshTokens(ctx context.Context, userID int64, now time.Time) (int64, error) {
	const op = "storage.postgres.RevokeUserRefreshTokens"

	tag, err := s.db.Exec(ctx, `
		UPDATE refresh_tokens
		SET revoked_at = $2
		WHERE user_id = $1 AND revoked_at IS NULL
	`, userID, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return tag.RowsAffected(), nil
}

func (s *Storage) scanRefresh(ctx context.Context, query string, arg any) (*models.RefreshToken, error) {
	var token models.RefreshToken
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.DeviceID,
		&token.DeviceName,
		&token.CreatedAt,
		&token.ExpiresAt,
		&token.LastUsedAt,
		&token.RevokedAt,
		&token.ReplacedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, err
	}

	token.CreatedAt = token.CreatedAt.UTC()
	token.ExpiresAt = token.ExpiresAt.UTC()
	token.LastUsedAt = token.LastUsedAt.UTC()

	return &token, nil
}
