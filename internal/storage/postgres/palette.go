package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pribylovaa/paleta/internal/models"
	"github.com/pribylovaa/paleta/internal/pagination"
	"github.com/pribylovaa/paleta/internal/storage"
)

// SavePalette создаёт палитру.
func (s *Storage) SavePalette(ctx context.Context, p *models.Palette) error {
	const op = "storage.postgres.SavePalette"

	err := s.db.QueryRow(ctx, `
		INSERT INTO palettes(user_id, name, colors, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, p.UserID, p.Name, p.Colors, p.CreatedAt).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// PaletteByID находит палитру по ID.
func (s *Storage) PaletteByID(ctx context.Context, id int64) (*models.Palette, error) {
	const op = "storage.postgres.PaletteByID"

	var p models.Palette
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, name, colors, created_at
		FROM palettes
		WHERE id = $1
	`, id).Scan(&p.ID, &p.UserID, &p.Name, &p.Colors, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p.CreatedAt = p.CreatedAt.UTC()

	return &p, nil
}

// ListPalettes — keyset-выборка палитр владельца.
func (s *Storage) ListPalettes(ctx context.Context, userID int64, after *pagination.Cursor, limit int) ([]models.Palette, error) {
	const op = "storage.postgres.ListPalettes"

	if limit <= 0 {
		limit = 1
	}

	var (
		rows pgx.Rows
		err  error
	)

	if after == nil {
		rows, err = s.db.Query(ctx, `
		SELECT id, user_id, name, colors, created_at
		FROM palettes
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
		`, userID, limit)
	} else {
		rows, err = s.db.Query(ctx, `
		SELECT id, user_id, name, colors, created_at
		FROM palettes
		WHERE user_id = $1 AND (created_at, id) < ($2, $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4
		`, userID, after.CreatedAt, after.ID, limit)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := make([]models.Palette, 0, limit)
	for rows.Next() {
		var p models.Palette
		if scanErr := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Colors, &p.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, scanErr)
		}

		p.CreatedAt = p.CreatedAt.UTC()
		items = append(items, p)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, rows.Err())
	}

	return items, nil
}

// PaletteNames возвращает имена палитр владельца с заданным префиксом.
func (s *Storage) PaletteNames(ctx context.Context, userID int64, prefix string) ([]string, error) {
	const op = "storage.postgres.PaletteNames"

	rows, err := s.db.Query(ctx, `
		SELECT name
		FROM palettes
		WHERE user_id = $1 AND left(name, char_length($2)) = $2
	`, userID, prefix)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return names, nil
}

// UpdatePalette сохраняет имя и цвета палитры.
func (s *Storage) UpdatePalette(ctx context.Context, p *models.Palette) error {
	const op = "storage.postgres.UpdatePalette"

	tag, err := s.db.Exec(ctx, `
		UPDATE palettes
		SET name = $2, colors = $3
		WHERE id = $1
	`, p.ID, p.Name, p.Colors)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// DeletePalette удаляет палитру.
func (s *Storage) DeletePalette(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeletePalette"

	tag, err := s.db.Exec(ctx, `DELETE FROM palettes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
