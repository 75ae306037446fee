package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pribylovaa/paleta/internal/pkg/log"
	"github.com/pribylovaa/paleta/internal/transport/http/apierrors"
)

// Verifier проверяет access-токен и возвращает id пользователя.
type Verifier interface {
	VerifyBearer(ctx context.Context, token string) (int64, error)
}

// RequireUser пропускает запрос только с валидным Bearer-токеном.
// Отсутствие токена — AUTH_REQUIRED, невалидный — ошибка верификатора.
func RequireUser(v Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearer(r.Header.Get("Authorization"))
			if !ok {
				apierrors.WriteError(w, r, apierrors.ErrAuthRequired)
				return
			}

			userID, err := v.VerifyBearer(r.Context(), token)
			if err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			ctx := WithUserID(r.Context(), userID)
			ctx = log.With(ctx, "user_id", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearer извлекает токен из заголовка Authorization. Схема регистронезависима.
func bearer(header string) (string, bool) {
	const prefix = "bearer "

	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
