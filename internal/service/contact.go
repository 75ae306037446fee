package service

import (
	"net/mail"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/pribylovaa/paleta/internal/models"
)

// normalizeEmail проверяет формат адреса и приводит его к нижнему регистру.
func normalizeEmail(raw string) (string, bool) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", false
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", false
	}

	return strings.ToLower(email), true
}

// normalizePhone разбирает номер с учётом региона по умолчанию и
// возвращает его в E.164.
func normalizePhone(raw, region string) (string, bool) {
	phone := strings.TrimSpace(raw)
	if phone == "" {
		return "", false
	}

	parsed, err := phonenumbers.Parse(phone, region)
	if err != nil {
		return "", false
	}

	if !phonenumbers.IsValidNumber(parsed) {
		return "", false
	}

	return phonenumbers.Format(parsed, phonenumbers.E164), true
}

// normalizeContact нормализует адрес для канала.
func (s *Service) normalizeContact(channel models.Channel, raw string) (string, error) {
	switch channel {
	case models.ChannelEmail:
		if v, ok := normalizeEmail(raw); ok {
			return v, nil
		}
		return "", invalid("invalid email")
	case models.ChannelPhone:
		if v, ok := normalizePhone(raw, s.phoneRegion); ok {
			return v, nil
		}
		return "", invalid("invalid phone number")
	default:
		return "", invalid("channel must be email or phone")
	}
}

// parseChannel разбирает канал; пустое значение означает email.
func parseChannel(raw string) (models.Channel, error) {
	ch := models.Channel(strings.ToLower(strings.TrimSpace(raw)))
	if ch == "" {
		ch = models.ChannelEmail
	}

	if !ch.Valid() {
		return "", invalid("channel must be email or phone")
	}

	return ch, nil
}
