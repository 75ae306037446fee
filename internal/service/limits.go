package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pribylovaa/paleta/internal/pkg/log"
	"github.com/pribylovaa/paleta/internal/ratelimit"
)

// allow засчитывает запрос в корзину. Недоступность лимитера не блокирует
// вход пользователей: ошибка логируется, запрос пропускается.
func (s *Service) allow(ctx context.Context, b ratelimit.Bucket, key string) error {
	const op = "service.limits.allow"

	key = strings.TrimSpace(key)
	if key == "" {
		key = "anonymous"
	}

	ok, err := s.limiter.Allow(ctx, b, key)
	if err != nil {
		log.From(ctx).Error("rate_limiter_failed",
			slog.String("op", op),
			slog.String("bucket", b.Name),
			slog.String("err", err.Error()),
		)
		return nil
	}

	if !ok {
		s.metrics.RateLimited(b.Name)
		log.From(ctx).Warn("rate_limited", slog.String("bucket", b.Name))
		return fmt.Errorf("%s: %w", op, ErrRateLimited)
	}

	return nil
}
