// service содержит бизнес-логику Paleta: учётные записи, сессии
// (access/refresh), сброс пароля по коду и палитры пользователя.
//
// Основные аспекты:
//   - Service не хранит состояние запроса и безопасен для конкурентного
//     использования при потокобезопасном storage.Storage.
//   - Ошибки возвращаются как sentinel-значения пакета; транспорт маппит их
//     на стабильные коды API (см. комментарии к переменным ниже).
//   - Текущее время берётся из s.now и передаётся компонентам явно.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/paleta/internal/accesstoken"
	"github.com/pribylovaa/paleta/internal/config"
	"github.com/pribylovaa/paleta/internal/metrics"
	"github.com/pribylovaa/paleta/internal/notify"
	"github.com/pribylovaa/paleta/internal/ratelimit"
	"github.com/pribylovaa/paleta/internal/refresh"
	"github.com/pribylovaa/paleta/internal/resetcode"
	"github.com/pribylovaa/paleta/internal/secrets"
	"github.com/pribylovaa/paleta/internal/storage"
)

var (
	// ErrValidation — входные данные не прошли проверку.
	// Транспорт: VALIDATION_ERROR (HTTP 400). Подробности — в *ValidationError.
	ErrValidation = errors.New("validation error")

	// ErrInvalidCredentials — пара логин/пароль неверна или пользователь не найден.
	// Транспорт: AUTH_INVALID_CREDENTIALS (HTTP 401).
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken — access-токен некорректен или его владелец удалён.
	// Транспорт: AUTH_INVALID_TOKEN (HTTP 401).
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия access-токена истёк.
	// Транспорт: AUTH_TOKEN_EXPIRED (HTTP 401).
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidRefresh — refresh-токен неизвестен, отозван или уже ротирован.
	// Транспорт: AUTH_INVALID_REFRESH (HTTP 401).
	ErrInvalidRefresh = errors.New("invalid refresh token")

	// ErrRefreshExpired — срок действия refresh-токена истёк.
	// Транспорт: AUTH_REFRESH_EXPIRED (HTTP 401).
	ErrRefreshExpired = errors.New("refresh token expired")

	// ErrRateLimited — превышен лимит частоты запросов.
	// Транспорт: RATE_LIMITED (HTTP 429).
	ErrRateLimited = errors.New("rate limited")

	// ErrNotFound — ресурс не найден. Транспорт: NOT_FOUND (HTTP 404).
	ErrNotFound = errors.New("not found")

	// ErrForbidden — ресурс принадлежит другому пользователю.
	// Транспорт: FORBIDDEN (HTTP 403).
	ErrForbidden = errors.New("forbidden")

	// ErrCodeNotFound — нет активного кода сброса (или контакт неизвестен).
	// Транспорт: CODE_NOT_FOUND (HTTP 400).
	ErrCodeNotFound = errors.New("reset code not found")

	// ErrCodeMismatch — код сброса не совпал. Транспорт: CODE_MISMATCH (HTTP 400).
	ErrCodeMismatch = errors.New("reset code mismatch")

	// ErrAttemptsExceeded — исчерпаны попытки ввода кода.
	// Транспорт: ATTEMPTS_EXCEEDED (HTTP 400).
	ErrAttemptsExceeded = errors.New("reset code attempts exceeded")

	// ErrUsernameTaken — имя пользователя занято. Транспорт: USERNAME_TAKEN (HTTP 409).
	ErrUsernameTaken = errors.New("username already taken")

	// ErrContactTaken — e-mail или телефон принадлежит другому аккаунту.
	// Транспорт: CONTACT_TAKEN (HTTP 409).
	ErrContactTaken = errors.New("contact already taken")

	// ErrPaletteNameConflict — у владельца уже есть палитра с таким именем.
	// Транспорт: PALETTE_NAME_CONFLICT (HTTP 409).
	ErrPaletteNameConflict = errors.New("palette name conflict")
)

// ValidationError несёт сообщение для клиента и сопоставляется с ErrValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is позволяет проверять errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Service описывает бизнес-логику Paleta.
type Service struct {
	storage storage.Storage
	access  *accesstoken.Codec
	refresh *refresh.Store
	codes   *resetcode.Manager
	limiter ratelimit.Limiter
	sender  notify.Sender
	metrics *metrics.Metrics

	limits      config.LimitsConfig
	phoneRegion string
	bcryptCost  int
	dummyHash   []byte
	now         func() time.Time
}

// Option настраивает необязательные зависимости Service.
type Option func(*Service)

// WithLimiter задаёт ограничитель частоты (по умолчанию ratelimit.Noop).
func WithLimiter(l ratelimit.Limiter) Option {
	return func(s *Service) { s.limiter = l }
}

// WithSender задаёт доставку кодов сброса (по умолчанию notify.Log).
func WithSender(snd notify.Sender) Option {
	return func(s *Service) { s.sender = snd }
}

// WithMetrics включает метрики.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithBcryptCost задаёт стоимость bcrypt (тесты используют bcrypt.MinCost).
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

// New создаёт Service и его компоненты из конфигурации.
func New(st storage.Storage, cfg *config.Config, opts ...Option) (*Service, error) {
	const op = "service.New"

	access, err := accesstoken.New(accesstoken.Options{
		Secret:   cfg.Auth.SigningSecret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
		TTL:      cfg.Auth.AccessTTL(),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hasher, err := secrets.NewHasher(cfg.Auth.SigningSecret)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s := &Service{
		storage: st,
		access:  access,
		refresh: refresh.New(st, refresh.Options{
			TTL:         cfg.Auth.RefreshTTL(),
			ReusePolicy: cfg.Auth.ReusePolicy(),
		}),
		codes: resetcode.New(st, hasher, resetcode.Options{
			TTL:         cfg.Auth.ResetCodeTTL(),
			MaxAttempts: cfg.Auth.MaxResetAttempts(),
		}),
		limiter:     ratelimit.Noop{},
		sender:      notify.Log{},
		limits:      cfg.Limits.Normalized(),
		phoneRegion: cfg.Notify.PhoneRegion,
		bcryptCost:  bcrypt.DefaultCost,
		now:         func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(s)
	}

	// Хэш для сравнения при неизвестном пользователе: время ответа не выдаёт,
	// существует ли аккаунт.
	s.dummyHash, err = bcrypt.GenerateFromPassword(prehash("paleta-timing-guard"), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

// pinger — зависимость, умеющая проверять соединение (например, Redis-лимитер).
type pinger interface {
	Ping(ctx context.Context) error
}

// Ready проверяет доступность хранилища и, если он сетевой, лимитера.
func (s *Service) Ready(ctx context.Context) error {
	const op = "service.Ready"

	if err := s.storage.Ping(ctx); err != nil {
		return fmt.Errorf("%s: storage: %w", op, err)
	}

	if p, ok := s.limiter.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("%s: limiter: %w", op, err)
		}
	}

	return nil
}

// CleanupResetCodes удаляет коды сброса, отработавшие раньше before.
func (s *Service) CleanupResetCodes(ctx context.Context, before time.Time) (int64, error) {
	const op = "service.CleanupResetCodes"

	n, err := s.codes.Cleanup(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}
