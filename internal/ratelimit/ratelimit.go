// ratelimit ограничивает частоту запросов по именованным корзинам
// фиксированного окна.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrRateLimited — лимит корзины исчерпан.
var ErrRateLimited = errors.New("rate limited")

// Bucket — именованное правило: не больше Limit запросов за Window на ключ.
type Bucket struct {
	Name   string
	Limit  int
	Window time.Duration
}

// Корзины операций аутентификации.
var (
	LoginIP          = Bucket{Name: "login_ip", Limit: 30, Window: 10 * time.Minute}
	LoginUser        = Bucket{Name: "login_user", Limit: 12, Window: 10 * time.Minute}
	Refresh          = Bucket{Name: "refresh", Limit: 60, Window: 10 * time.Minute}
	ForgotPasswordIP = Bucket{Name: "forgot_password_ip", Limit: 8, Window: 15 * time.Minute}
	ResetPasswordIP  = Bucket{Name: "reset_password_ip", Limit: 20, Window: 15 * time.Minute}
	Register         = Bucket{Name: "register", Limit: 10, Window: 15 * time.Minute}
)

// ForgotPassword — корзина запросов кода на конкретный адрес канала.
func ForgotPassword(channel string) Bucket {
	return Bucket{Name: "forgot_password_" + channel, Limit: 5, Window: 15 * time.Minute}
}

// ResetPassword — корзина попыток сброса на конкретный адрес канала.
func ResetPassword(channel string) Bucket {
	return Bucket{Name: "reset_password_" + channel, Limit: 12, Window: 15 * time.Minute}
}

// Limiter — контракт ограничителя.
type Limiter interface {
	// Allow засчитывает запрос с ключом key в корзину b и сообщает,
	// укладывается ли он в лимит.
	Allow(ctx context.Context, b Bucket, key string) (bool, error)
}

// Noop пропускает все запросы. Используется, когда Redis не настроен.
type Noop struct{}

// Allow всегда разрешает запрос.
func (Noop) Allow(context.Context, Bucket, string) (bool, error) { return true, nil }
