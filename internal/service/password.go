package service

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLen = 10
	maxPasswordLen = 128
)

// hashPassword хэширует пароль с помощью bcrypt.
func (s *Service) hashPassword(password string) (string, error) {
	const op = "service.password.hashPassword"

	b, err := bcrypt.GenerateFromPassword(prehash(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(b), nil
}

// checkPassword сравнивает пароль с хэшем.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), prehash(password)) == nil
}

// prehash сжимает пароль до 44 байт: bcrypt учитывает только первые 72,
// а политика допускает до 128 символов.
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// validatePassword проверяет политику сложности: 10–128 символов, без пробелов,
// заглавная, строчная, цифра и спецсимвол; пароль не содержит имя пользователя.
func validatePassword(pw, username string) error {
	n := utf8.RuneCountInString(pw)
	if n < minPasswordLen || n > maxPasswordLen {
		return invalid("password must be %d to %d characters long", minPasswordLen, maxPasswordLen)
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range pw {
		switch {
		case unicode.IsSpace(r):
			return invalid("password must not contain whitespace")
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsLetter(r):
			hasSpecial = true
		}
	}

	switch {
	case !hasUpper:
		return invalid("password must contain an uppercase letter")
	case !hasLower:
		return invalid("password must contain a lowercase letter")
	case !hasDigit:
		return invalid("password must contain a digit")
	case !hasSpecial:
		return invalid("password must contain a special character")
	}

	if username != "" && strings.Contains(strings.ToLower(pw), strings.ToLower(username)) {
		return invalid("password must not contain the username")
	}

	return nil
}
