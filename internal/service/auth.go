package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pribylovaa/paleta/internal/accesstoken"
	"github.com/pribylovaa/paleta/internal/models"
	"github.com/pribylovaa/paleta/internal/pkg/log"
	"github.com/pribylovaa/paleta/internal/ratelimit"
	"github.com/pribylovaa/paleta/internal/refresh"
	"github.com/pribylovaa/paleta/internal/storage"
)

const (
	defaultDeviceID   = "android"
	defaultDeviceName = "Android Device"
	maxUsernameLen    = 64
	maxDeviceFieldLen = 128
)

// RegisterInput — данные регистрации. Нужен хотя бы один контакт.
type RegisterInput struct {
	Username string
	Password string
	Email    string
	Phone    string
	ClientIP string
}

// LoginInput — вход по имени пользователя и паролю.
type LoginInput struct {
	Username   string
	Password   string
	DeviceID   string
	DeviceName string
	ClientIP   string
}

// RefreshInput — ротация refresh-токена.
type RefreshInput struct {
	RefreshToken string
	DeviceID     string
	DeviceName   string
	ClientIP     string
}

// Session — выданная пара токенов и её владелец.
type Session struct {
	Tokens models.TokenPair
	User   *models.User
}

// Register создаёт учётную запись.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	const op = "service.auth.Register"

	if err := s.allow(ctx, ratelimit.Register, in.ClientIP); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	username := strings.TrimSpace(in.Username)
	if err := validateUsername(username); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if in.Password == "" {
		return nil, fmt.Errorf("%s: %w", op, invalid("username and password are required"))
	}

	rawEmail, rawPhone := strings.TrimSpace(in.Email), strings.TrimSpace(in.Phone)
	if rawEmail == "" && rawPhone == "" {
		return nil, fmt.Errorf("%s: %w", op, invalid("email or phone is required for password recovery"))
	}

	var email, phone string
	if rawEmail != "" {
		v, err := s.normalizeContact(models.ChannelEmail, rawEmail)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		email = v
	}

	if rawPhone != "" {
		v, err := s.normalizeContact(models.ChannelPhone, rawPhone)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		phone = v
	}

	if err := validatePassword(in.Password, username); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.checkAvailable(ctx, username, email, phone); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Email:        email,
		Phone:        phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			// Гонка с параллельной регистрацией: уточняем, что именно занято.
			if _, lerr := s.storage.UserByUsername(ctx, username); lerr == nil {
				return nil, fmt.Errorf("%s: %w", op, ErrUsernameTaken)
			}

			return nil, fmt.Errorf("%s: %w", op, ErrContactTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_registered", slog.Int64("user_id", user.ID))

	return user, nil
}

func (s *Service) checkAvailable(ctx context.Context, username, email, phone string) error {
	if _, err := s.storage.UserByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	contacts := []struct {
		ch  models.Channel
		val string
	}{{models.ChannelEmail, email}, {models.ChannelPhone, phone}}

	for _, c := range contacts {
		if c.val == "" {
			continue
		}

		if _, err := s.storage.UserByContact(ctx, c.ch, c.val); err == nil {
			return ErrContactTaken
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
	}

	return nil
}

// Login выполняет вход и выпускает пару токенов для устройства.
// Неизвестный пользователь и неверный пароль неразличимы снаружи.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	const op = "service.auth.Login"

	if err := s.allow(ctx, ratelimit.LoginIP, in.ClientIP); err != nil {
		s.metrics.Login("rate_limited")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	username := strings.TrimSpace(in.Username)
	if err := s.allow(ctx, ratelimit.LoginUser, strings.ToLower(username)); err != nil {
		s.metrics.Login("rate_limited")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if username == "" || in.Password == "" {
		return nil, fmt.Errorf("%s: %w", op, invalid("username and password are required"))
	}

	user, err := s.storage.UserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		_ = checkPassword(string(s.dummyHash), in.Password)
		s.metrics.Login("invalid_credentials")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if !checkPassword(user.PasswordHash, in.Password) {
		s.metrics.Login("invalid_credentials")
		log.From(ctx).Info("login_failed", slog.Int64("user_id", user.ID))
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	now := s.now()
	raw, err := s.refresh.Issue(ctx, user.ID, device(in.DeviceID, in.DeviceName), now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pair, err := s.tokenPair(user.ID, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.Login("success")
	log.From(ctx).Info("login_succeeded", slog.Int64("user_id", user.ID))

	return &Session{Tokens: *pair, User: user}, nil
}

// Refresh ротирует refresh-токен и выпускает новую пару.
func (s *Service) Refresh(ctx context.Context, in RefreshInput) (*models.TokenPair, error) {
	const op = "service.auth.Refresh"

	if err := s.allow(ctx, ratelimit.Refresh, in.ClientIP); err != nil {
		s.metrics.Refresh("rate_limited")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	raw := strings.TrimSpace(in.RefreshToken)
	if raw == "" {
		return nil, fmt.Errorf("%s: %w", op, invalid("refresh token is required"))
	}

	rot, err := s.refresh.Rotate(ctx, raw, device(in.DeviceID, in.DeviceName), s.now())
	if err != nil {
		switch {
		case errors.Is(err, refresh.ErrRefreshReused):
			s.metrics.Refresh("reused")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidRefresh)
		case errors.Is(err, refresh.ErrRefreshInvalid):
			s.metrics.Refresh("invalid")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidRefresh)
		case errors.Is(err, refresh.ErrRefreshExpired):
			s.metrics.Refresh("expired")
			return nil, fmt.Errorf("%s: %w", op, ErrRefreshExpired)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pair, err := s.tokenPair(rot.UserID, rot.Raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.Refresh("success")

	return pair, nil
}

// Logout отзывает refresh-токен. Повторный вызов безопасен;
// результат сообщает, был ли такой токен вообще выдан.
func (s *Service) Logout(ctx context.Context, refreshToken string) (bool, error) {
	const op = "service.auth.Logout"

	raw := strings.TrimSpace(refreshToken)
	if raw == "" {
		return false, fmt.Errorf("%s: %w", op, invalid("refresh token is required"))
	}

	found, err := s.refresh.Revoke(ctx, raw, s.now())
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return found, nil
}

// VerifyBearer проверяет access-токен и возвращает ID пользователя.
// Токен удалённого пользователя недействителен.
func (s *Service) VerifyBearer(ctx context.Context, token string) (int64, error) {
	const op = "service.auth.VerifyBearer"

	claims, err := s.access.Verify(token, s.now())
	if err != nil {
		if errors.Is(err, accesstoken.ErrTokenExpired) {
			return 0, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return 0, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if _, err := s.storage.UserByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return claims.UserID, nil
}

// Me возвращает профиль пользователя с контактами.
func (s *Service) Me(ctx context.Context, userID int64) (*models.User, error) {
	const op = "service.auth.Me"

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Service) tokenPair(userID int64, refreshRaw string) (*models.TokenPair, error) {
	access, expiresIn, err := s.access.Issue(userID, s.now())
	if err != nil {
		return nil, err
	}

	return &models.TokenPair{
		AccessToken:  access,
		RefreshToken: refreshRaw,
		ExpiresIn:    expiresIn,
		TokenType:    models.TokenType,
	}, nil
}

// device подставляет значения по умолчанию для мобильного клиента.
func device(id, name string) refresh.Device {
	id = truncate(strings.TrimSpace(id), maxDeviceFieldLen)
	if id == "" {
		id = defaultDeviceID
	}

	name = truncate(strings.TrimSpace(name), maxDeviceFieldLen)
	if name == "" {
		name = defaultDeviceName
	}

	return refresh.Device{ID: id, Name: name}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	return string([]rune(s)[:n])
}

func validateUsername(username string) error {
	if username == "" {
		return invalid("username and password are required")
	}

	if utf8.RuneCountInString(username) > maxUsernameLen {
		return invalid("username must be at most %d characters", maxUsernameLen)
	}

	for _, r := range username {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return invalid("username must not contain whitespace")
		}
	}

	return nil
}
