package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/paleta/internal/models"
	"github.com/pribylovaa/paleta/internal/pagination"
	"github.com/pribylovaa/paleta/internal/storage"
)

func TestIntegration_Palettes_KeysetPaging(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()
	u := seedUser(t, st, "painter")
	other := seedUser(t, st, "stranger")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		// Две палитры с одинаковым created_at проверяют разрешение ничьей по id.
		ts := base.Add(time.Duration(i/2) * time.Minute)
		p := &models.Palette{UserID: u.ID, Name: fmt.Sprintf("p%d", i), Colors: []string{"#000000"}, CreatedAt: ts}
		require.NoError(t, st.SavePalette(ctx, p))
	}
	require.NoError(t, st.SavePalette(ctx, &models.Palette{UserID: other.ID, Name: "x", Colors: []string{"#FFFFFF"}, CreatedAt: base}))

	var (
		seen  []string
		after *pagination.Cursor
	)
	for {
		items, err := st.ListPalettes(ctx, u.ID, after, 2)
		require.NoError(t, err)
		if len(items) == 0 {
			break
		}
		for _, it := range items {
			seen = append(seen, it.Name)
		}
		last := items[len(items)-1]
		after = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}

	require.Equal(t, []string{"p4", "p3", "p2", "p1", "p0"}, seen)
}

func TestIntegration_Palettes_CRUD(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()
	u := seedUser(t, st, "crud")
	now := time.Now().UTC()

	p := &models.Palette{UserID: u.ID, Name: "Моя палитра", Colors: []string{"#112233", "#AABBCC"}, CreatedAt: now}
	require.NoError(t, st.SavePalette(ctx, p))
	require.NoError(t, st.SavePalette(ctx, &models.Palette{UserID: u.ID, Name: "Моя палитра 1", Colors: []string{"#000000"}, CreatedAt: now}))

	dup := &models.Palette{UserID: u.ID, Name: "Моя палитра", Colors: []string{"#000000"}, CreatedAt: now}
	require.ErrorIs(t, st.SavePalette(ctx, dup), storage.ErrAlreadyExists)

	names, err := st.PaletteNames(ctx, u.ID, "Моя палитра")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"Моя палитра", "Моя палитра 1"}, names)

	p.Name = "Моя палитра 1"
	require.ErrorIs(t, st.UpdatePalette(ctx, p), storage.ErrAlreadyExists)

	p.Name = "Закат"
	p.Colors = []string{"#FF0000"}
	require.NoError(t, st.UpdatePalette(ctx, p))

	got, err := st.PaletteByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Закат", got.Name)
	require.Equal(t, []string{"#FF0000"}, got.Colors)

	require.NoError(t, st.DeletePalette(ctx, p.ID))
	require.ErrorIs(t, st.DeletePalette(ctx, p.ID), storage.ErrNotFound)
	_, err = st.PaletteByID(ctx, p.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
}
