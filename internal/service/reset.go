package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pribylovaa/paleta/internal/notify"
	"github.com/pribylovaa/paleta/internal/pkg/log"
	"github.com/pribylovaa/paleta/internal/pkg/redact"
	"github.com/pribylovaa/paleta/internal/ratelimit"
	"github.com/pribylovaa/paleta/internal/resetcode"
	"github.com/pribylovaa/paleta/internal/secrets"
	"github.com/pribylovaa/paleta/internal/storage"
)

// ResetRequestInput — запрос кода сброса на контакт.
type ResetRequestInput struct {
	Channel  string
	Contact  string
	ClientIP string
}

// ResetConfirmInput — смена пароля по коду.
type ResetConfirmInput struct {
	Channel         string
	Contact         string
	Code            string
	NewPassword     string
	ConfirmPassword string
	ClientIP        string
}

// RequestResetCode выпускает и отправляет код сброса. Для неизвестного контакта
// ответ такой же, как для известного: существование аккаунта не раскрывается.
// Ошибка доставки только логируется.
func (s *Service) RequestResetCode(ctx context.Context, in ResetRequestInput) error {
	const op = "service.reset.RequestResetCode"

	if err := s.allow(ctx, ratelimit.ForgotPasswordIP, in.ClientIP); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	channel, err := parseChannel(in.Channel)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	dest, err := s.normalizeContact(channel, in.Contact)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.allow(ctx, ratelimit.ForgotPassword(string(channel)), dest); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	lg := log.From(ctx).With(
		slog.String("op", op),
		slog.String("channel", string(channel)),
		slog.String("destination", redact.Destination(dest)),
	)

	user, err := s.storage.UserByContact(ctx, channel, dest)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.metrics.ResetCode("unknown_contact")
			lg.Info("reset_code_unknown_contact")
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	code, err := s.codes.Issue(ctx, user.ID, channel, dest, s.now())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.ResetCode("issued")

	msg := notify.Message{Channel: channel, Destination: dest, Code: code}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.metrics.ResetCode("delivery_failed")
		lg.Error("reset_code_delivery_failed", slog.String("err", err.Error()))
	}

	return nil
}

// ConfirmReset проверяет код и меняет пароль. Обновление пароля, погашение кода
// и отзыв всех refresh-токенов пользователя выполняются одной транзакцией.
func (s *Service) ConfirmReset(ctx context.Context, in ResetConfirmInput) error {
	const op = "service.reset.ConfirmReset"

	if err := s.allow(ctx, ratelimit.ResetPasswordIP, in.ClientIP); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	channel, err := parseChannel(in.Channel)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	dest, err := s.normalizeContact(channel, in.Contact)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	code := strings.TrimSpace(in.Code)
	if !secrets.ValidCode(code) {
		return fmt.Errorf("%s: %w", op, invalid("reset code must be %d digits", secrets.CodeDigits))
	}

	if in.NewPassword != in.ConfirmPassword {
		return fmt.Errorf("%s: %w", op, invalid("passwords do not match"))
	}

	user, err := s.storage.UserByContact(ctx, channel, dest)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.metrics.ResetCode("not_found")
			return fmt.Errorf("%s: %w", op, ErrCodeNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.allow(ctx, ratelimit.ResetPassword(string(channel)), dest); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := validatePassword(in.NewPassword, user.Username); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if checkPassword(user.PasswordHash, in.NewPassword) {
		return fmt.Errorf("%s: %w", op, invalid("new password must differ from the current one"))
	}

	hash, err := s.hashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	var revoked int64

	err = s.codes.Verify(ctx, resetcode.VerifyInput{
		UserID:      user.ID,
		Channel:     channel,
		Destination: dest,
		Code:        code,
	}, now, func(ctx context.Context, tx storage.Storage) error {
		if err := tx.UpdatePassword(ctx, user.ID, hash, now); err != nil {
			return err
		}

		n, err := s.refresh.With(tx).RevokeAll(ctx, user.ID, now)
		revoked = n
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, resetcode.ErrCodeNotFound):
			s.metrics.ResetCode("not_found")
			return fmt.Errorf("%s: %w", op, ErrCodeNotFound)
		case errors.Is(err, resetcode.ErrCodeMismatch):
			s.metrics.ResetCode("mismatch")
			return fmt.Errorf("%s: %w", op, ErrCodeMismatch)
		case errors.Is(err, resetcode.ErrAttemptsExceeded):
			s.metrics.ResetCode("attempts_exceeded")
			log.From(ctx).Warn("reset_attempts_exceeded",
				slog.Int64("user_id", user.ID),
				slog.Int("max_attempts", s.codes.MaxAttempts()),
			)
			return fmt.Errorf("%s: %w", op, ErrAttemptsExceeded)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.ResetCode("consumed")
	log.From(ctx).Info("password_reset",
		slog.Int64("user_id", user.ID),
		slog.Int64("sessions_revoked", revoked),
	)

	return nil
}
