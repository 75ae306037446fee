// apierrors стандартизирует ответы HTTP-слоя Paleta.
// На вход принимает ошибку сервисного слоя, на выход даёт:
//   - HTTP-статус;
//   - стабильный машиночитаемый код;
//   - безопасное сообщение без внутренних деталей.
//
// Маппинг сентинелов в коды живёт только здесь.
package apierrors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/paleta/internal/service"
)

// StatusClientClosedRequest — нестандартный статус "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// Стабильные коды ошибок API.
const (
	CodeAuthRequired           = "AUTH_REQUIRED"
	CodeAuthInvalidToken       = "AUTH_INVALID_TOKEN"
	CodeAuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	CodeAuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeAuthInvalidRefresh     = "AUTH_INVALID_REFRESH"
	CodeAuthRefreshExpired     = "AUTH_REFRESH_EXPIRED"
	CodeValidation             = "VALIDATION_ERROR"
	CodeRateLimited            = "RATE_LIMITED"
	CodeNotFound               = "NOT_FOUND"
	CodeForbidden              = "FORBIDDEN"
	CodeCodeNotFound           = "CODE_NOT_FOUND"
	CodeCodeMismatch           = "CODE_MISMATCH"
	CodeAttemptsExceeded       = "ATTEMPTS_EXCEEDED"
	CodeUsernameTaken          = "USERNAME_TAKEN"
	CodeContactTaken           = "CONTACT_TAKEN"
	CodePaletteNameConflict    = "PALETTE_NAME_CONFLICT"
	CodeCanceled               = "CANCELED"
	CodeTimeout                = "TIMEOUT"
	CodeInternal               = "INTERNAL_ERROR"
)

// ErrAuthRequired — запрос к защищённому ресурсу без Bearer-токена.
var ErrAuthRequired = errors.New("authorization required")

// APIError — тело ошибки.
// RequestID прокидывается из X-Request-Id для трассировки.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект ответа об ошибке.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

type mapping struct {
	target  error
	status  int
	code    string
	message string
}

var table = []mapping{
	{ErrAuthRequired, http.StatusUnauthorized, CodeAuthRequired, "authorization required"},
	{service.ErrInvalidToken, http.StatusUnauthorized, CodeAuthInvalidToken, "invalid access token"},
	{service.ErrTokenExpired, http.StatusUnauthorized, CodeAuthTokenExpired, "access token expired"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, CodeAuthInvalidCredentials, "invalid username or password"},
	{service.ErrInvalidRefresh, http.StatusUnauthorized, CodeAuthInvalidRefresh, "invalid refresh token"},
	{service.ErrRefreshExpired, http.StatusUnauthorized, CodeAuthRefreshExpired, "refresh token expired"},
	{service.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited, "too many requests, try again later"},
	{service.ErrNotFound, http.StatusNotFound, CodeNotFound, "not found"},
	{service.ErrForbidden, http.StatusForbidden, CodeForbidden, "access denied"},
	{service.ErrCodeNotFound, http.StatusBadRequest, CodeCodeNotFound, "reset code not found or expired, request a new one"},
	{service.ErrCodeMismatch, http.StatusBadRequest, CodeCodeMismatch, "invalid reset code"},
	{service.ErrAttemptsExceeded, http.StatusBadRequest, CodeAttemptsExceeded, "too many attempts, request a new code"},
	{service.ErrUsernameTaken, http.StatusConflict, CodeUsernameTaken, "username is already taken"},
	{service.ErrContactTaken, http.StatusConflict, CodeContactTaken, "contact is already used by another account"},
	{service.ErrPaletteNameConflict, http.StatusConflict, CodePaletteNameConflict, "palette with this name already exists"},
	{context.Canceled, StatusClientClosedRequest, CodeCanceled, "request canceled"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, CodeTimeout, "request timed out"},
}

// FromError конвертирует ошибку в HTTP-статус и тело.
//
// Поведение:
//   - err == nil — программная ошибка вызова: 500, чтобы не маскировать баг;
//   - *service.ValidationError — 400 с сообщением из ошибки;
//   - известный сентинел — статус и код из таблицы;
//   - прочее (в т.ч. ошибки хранилища) — 500 без деталей.
func FromError(err error) (int, APIError) {
	if err == nil {
		return http.StatusInternalServerError, APIError{Code: CodeInternal, Message: "internal error"}
	}

	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, APIError{Code: CodeValidation, Message: ve.Message}
	}

	for _, m := range table {
		if errors.Is(err, m.target) {
			return m.status, APIError{Code: m.code, Message: m.message}
		}
	}

	return http.StatusInternalServerError, APIError{Code: CodeInternal, Message: "internal error"}
}

// Validation — ошибка валидации транспортного уровня (битый JSON, параметры пути).
func Validation(message string) error {
	return &service.ValidationError{Message: message}
}

// WriteError пишет статус и тело ошибки, добавляя request_id из заголовка.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, apiErr := FromError(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		apiErr.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Success: false, Error: apiErr})
}
