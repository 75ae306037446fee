package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/pribylovaa/paleta/internal/transport/http/apierrors"
)

// Timeout ограничивает время обработки запроса к API. Если у контекста уже
// есть более ранний дедлайн, остаётся он. Обработчик, не успевший ничего
// записать до истечения срока, получает ответ 504 TIMEOUT.
// d <= 0 отключает ограничение.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r.WithContext(ctx))

			if sw.status == 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				apierrors.WriteError(sw, r, context.DeadlineExceeded)
			}
		})
	}
}
