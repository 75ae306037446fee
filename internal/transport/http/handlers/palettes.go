package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/paleta/internal/service"
	"github.com/pribylovaa/paleta/internal/transport/http/apierrors"
)

type createPaletteRequest struct {
	Name   *string  `json:"name"`
	Colors []string `json:"colors"`
}

type updatePaletteRequest struct {
	Name   *string   `json:"name"`
	Colors *[]string `json:"colors"`
}

type pageMeta struct {
	Limit      int     `json:"limit"`
	NextCursor *string `json:"next_cursor"`
	HasNext    bool    `json:"has_next"`
}

func (h *Handlers) ListPalettes(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			apierrors.WriteError(w, r, apierrors.Validation("limit must be an integer"))
			return
		}
		limit = n
	}

	page, err := h.svc.ListPalettes(r.Context(), userID, q.Get("cursor"), limit)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	meta := pageMeta{Limit: page.Limit, HasNext: page.HasNext}
	if page.NextCursor != "" {
		next := page.NextCursor
		meta.NextCursor = &next
	}

	writeData(w, http.StatusOK, page.Items, meta)
}

func (h *Handlers) CreatePalette(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var in createPaletteRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	p, err := h.svc.CreatePalette(r.Context(), userID, service.CreatePaletteInput{
		Name:   in.Name,
		Colors: in.Colors,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, p, nil)
}

func (h *Handlers) UpdatePalette(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	id, ok := paletteID(w, r)
	if !ok {
		return
	}

	var in updatePaletteRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	p, err := h.svc.UpdatePalette(r.Context(), userID, id, service.UpdatePaletteInput{
		Name:   in.Name,
		Colors: in.Colors,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, p, nil)
}

func (h *Handlers) DeletePalette(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	id, ok := paletteID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeletePalette(r.Context(), userID, id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, map[string]bool{"deleted": true}, nil)
}

func paletteID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		apierrors.WriteError(w, r, apierrors.Validation("invalid palette id"))
		return 0, false
	}

	return id, true
}
