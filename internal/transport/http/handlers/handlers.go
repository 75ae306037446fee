// handlers реализует REST-эндпойнты /api/v1 поверх сервисного слоя.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"

	"github.com/pribylovaa/paleta/internal/models"
	"github.com/pribylovaa/paleta/internal/service"
	"github.com/pribylovaa/paleta/internal/transport/http/apierrors"
	"github.com/pribylovaa/paleta/internal/transport/http/middleware"
)

// maxBodyBytes — предел размера тела запроса.
const maxBodyBytes = 64 << 10

// Service — операции, которые вызывают обработчики.
type Service interface {
	Register(ctx context.Context, in service.RegisterInput) (*models.User, error)
	Login(ctx context.Context, in service.LoginInput) (*service.Session, error)
	Refresh(ctx context.Context, in service.RefreshInput) (*models.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) (bool, error)
	RequestResetCode(ctx context.Context, in service.ResetRequestInput) error
	ConfirmReset(ctx context.Context, in service.ResetConfirmInput) error
	Me(ctx context.Context, userID int64) (*models.User, error)
	ListPalettes(ctx context.Context, userID int64, cursor string, limit int) (*models.PalettePage, error)
	CreatePalette(ctx context.Context, userID int64, in service.CreatePaletteInput) (*models.Palette, error)
	UpdatePalette(ctx context.Context, userID, paletteID int64, in service.UpdatePaletteInput) (*models.Palette, error)
	DeletePalette(ctx context.Context, userID, paletteID int64) error
}

// Handlers агрегирует зависимости обработчиков.
type Handlers struct {
	svc Service
}

func New(svc Service) *Handlers {
	return &Handlers{svc: svc}
}

// envelope — успешный ответ API.
type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Meta    any  `json:"meta,omitempty"`
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeData(w http.ResponseWriter, status int, data, meta any) {
	writeJSON(w, status, envelope{Success: true, Data: data, Meta: meta})
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля и хвост после объекта.
func decodeStrict(w http.ResponseWriter, r *http.Request, value any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(value); err != nil {
		if errors.Is(err, io.EOF) {
			return apierrors.Validation("request body is required")
		}
		return apierrors.Validation("invalid request body")
	}

	if dec.More() {
		return apierrors.Validation("invalid request body")
	}

	return nil
}

// clientIP — адрес клиента для лимитов. Заголовкам прокси не доверяем.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

// currentUser достаёт id пользователя, проставленный middleware.RequireUser.
func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, apierrors.ErrAuthRequired)
	}

	return id, ok
}
