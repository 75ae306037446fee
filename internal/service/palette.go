package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pribylovaa/paleta/internal/models"
	"github.com/pribylovaa/paleta/internal/pagination"
	"github.com/pribylovaa/paleta/internal/storage"
)

const (
	minColors      = 3
	maxColors      = 10
	maxPaletteName = 100

	// defaultPaletteName — базовое имя; следующие получают суффикс " 1", " 2", …
	defaultPaletteName = "Моя палитра"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Имена, которые клиенты подставляют вместо пользовательского названия.
var placeholderNames = map[string]bool{
	defaultPaletteName: true,
	"Без названия":     true,
	"Untitled Palette": true,
	"Random Palette":   true,
}

// CreatePaletteInput — новая палитра. Name == nil означает, что имя не передано.
type CreatePaletteInput struct {
	Name   *string
	Colors []string
}

// UpdatePaletteInput — частичное обновление; nil-поля не меняются.
type UpdatePaletteInput struct {
	Name   *string
	Colors *[]string
}

// ListPalettes возвращает страницу палитр владельца, от новых к старым.
// Пустой cursor — первая страница; непустой, но неразборчивый — ошибка валидации.
func (s *Service) ListPalettes(ctx context.Context, userID int64, cursor string, limit int) (*models.PalettePage, error) {
	const op = "service.palette.ListPalettes"

	limit = pagination.NormalizeLimit(limit, s.limits.Default, s.limits.Max)

	var after *pagination.Cursor
	if cursor != "" {
		c, ok := pagination.Decode(cursor)
		if !ok {
			return nil, fmt.Errorf("%s: %w", op, invalid("invalid cursor"))
		}
		after = &c
	}

	items, err := s.storage.ListPalettes(ctx, userID, after, limit+1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	page := &models.PalettePage{Limit: limit}
	if len(items) > limit {
		items = items[:limit]
		last := items[len(items)-1]
		page.HasNext = true
		page.NextCursor = pagination.Encode(last.CreatedAt, last.ID)
	}

	if items == nil {
		items = []models.Palette{}
	}
	page.Items = items

	return page, nil
}

// CreatePalette сохраняет палитру владельца.
func (s *Service) CreatePalette(ctx context.Context, userID int64, in CreatePaletteInput) (*models.Palette, error) {
	const op = "service.palette.CreatePalette"

	colors, err := normalizeColors(in.Colors)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	name, err := s.resolveName(ctx, userID, in.Name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p := &models.Palette{
		UserID:    userID,
		Name:      name,
		Colors:    colors,
		CreatedAt: s.now(),
	}

	if err := s.storage.SavePalette(ctx, p); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrPaletteNameConflict)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

// UpdatePalette меняет имя и/или цвета палитры владельца.
func (s *Service) UpdatePalette(ctx context.Context, userID, paletteID int64, in UpdatePaletteInput) (*models.Palette, error) {
	const op = "service.palette.UpdatePalette"

	p, err := s.ownedPalette(ctx, userID, paletteID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if in.Name == nil && in.Colors == nil {
		return nil, fmt.Errorf("%s: %w", op, invalid("nothing to update"))
	}

	if in.Name != nil {
		name, err := validatePaletteName(*in.Name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p.Name = name
	}

	if in.Colors != nil {
		colors, err := normalizeColors(*in.Colors)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p.Colors = colors
	}

	if err := s.storage.UpdatePalette(ctx, p); err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			return nil, fmt.Errorf("%s: %w", op, ErrPaletteNameConflict)
		case errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

// DeletePalette удаляет палитру владельца.
func (s *Service) DeletePalette(ctx context.Context, userID, paletteID int64) error {
	const op = "service.palette.DeletePalette"

	if _, err := s.ownedPalette(ctx, userID, paletteID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.DeletePalette(ctx, paletteID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) ownedPalette(ctx context.Context, userID, paletteID int64) (*models.Palette, error) {
	p, err := s.storage.PaletteByID(ctx, paletteID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	if p.UserID != userID {
		return nil, ErrForbidden
	}

	return p, nil
}

// resolveName выбирает имя новой палитры. Отсутствующее или шаблонное имя
// заменяется первым свободным из "Моя палитра", "Моя палитра 1", …
func (s *Service) resolveName(ctx context.Context, userID int64, requested *string) (string, error) {
	if requested != nil {
		name := strings.TrimSpace(*requested)
		if name == "" {
			return "", invalid("palette name must not be empty")
		}

		if !placeholderNames[name] {
			return validatePaletteName(name)
		}
	}

	names, err := s.storage.PaletteNames(ctx, userID, defaultPaletteName)
	if err != nil {
		return "", err
	}

	taken := make(map[string]bool, len(names))
	for _, n := range names {
		taken[n] = true
	}

	if !taken[defaultPaletteName] {
		return defaultPaletteName, nil
	}

	for i := 1; ; i++ {
		candidate := defaultPaletteName + " " + strconv.Itoa(i)
		if !taken[candidate] {
			return candidate, nil
		}
	}
}

func validatePaletteName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", invalid("palette name must not be empty")
	}

	if utf8.RuneCountInString(name) > maxPaletteName {
		return "", invalid("palette name must be at most %d characters", maxPaletteName)
	}

	return name, nil
}

// normalizeColors проверяет количество и формат #RRGGBB и приводит к верхнему регистру.
func normalizeColors(colors []string) ([]string, error) {
	if len(colors) < minColors || len(colors) > maxColors {
		return nil, invalid("palette must contain %d to %d HEX colors", minColors, maxColors)
	}

	out := make([]string, 0, len(colors))
	for _, c := range colors {
		c = strings.TrimSpace(c)
		if !hexColor.MatchString(c) {
			return nil, invalid("palette must contain valid HEX colors")
		}
		out = append(out, strings.ToUpper(c))
	}

	return out, nil
}
