// secrets генерирует одноразовые секреты (refresh-токены, коды сброса)
// и считает их односторонние хэши для хранения.
//
// Refresh-секреты несут 256 бит энтропии, поэтому достаточно SHA-256.
// Шестизначный код перебирается за миллион попыток, поэтому его хэш
// считается HMAC-SHA-256 на ключе, выведенном из секрета подписи (HKDF):
// утечка таблицы кодов без ключа не раскрывает сами коды.
package secrets

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"

	"golang.org/x/crypto/hkdf"
)

const (
	// TokenBytes — длина refresh-секрета до кодирования.
	TokenBytes = 32
	// CodeDigits — длина кода сброса пароля.
	CodeDigits = 6

	codeKeyInfo = "paleta/password-reset-code/v1"
)

var ErrEmptySecret = errors.New("signing secret is empty")

var codeSpace = big.NewInt(1_000_000)

// Hasher хранит производный ключ для HMAC кодов сброса.
// Безопасен для конкурентного использования.
type Hasher struct {
	codeKey []byte
}

// NewHasher выводит ключ для кодов сброса из секрета подписи.
func NewHasher(signingSecret string) (*Hasher, error) {
	const op = "secrets.NewHasher"

	if signingSecret == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptySecret)
	}

	key := make([]byte, sha256.Size)
	r := hkdf.New(sha256.New, []byte(signingSecret), nil, []byte(codeKeyInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Hasher{codeKey: key}, nil
}

// HashCode считает хэш кода, привязанный к пользователю: одинаковые коды
// разных пользователей дают разные хэши.
func (h *Hasher) HashCode(userID int64, code string) string {
	mac := hmac.New(sha256.New, h.codeKey)
	mac.Write([]byte(strconv.FormatInt(userID, 10)))
	mac.Write([]byte{':'})
	mac.Write([]byte(code))

	return hex.EncodeToString(mac.Sum(nil))
}

// HashToken — детерминированный хэш refresh-секрета (sha256 → base64url).
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Equal сравнивает хэши за постоянное время.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// NewToken генерирует refresh-секрет: 32 случайных байта в base64url.
func NewToken() (string, error) {
	const op = "secrets.NewToken"

	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewCode генерирует шестизначный код с ведущими нулями.
func NewCode() (string, error) {
	const op = "secrets.NewCode"

	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return fmt.Sprintf("%0*d", CodeDigits, n.Int64()), nil
}

// ValidCode проверяет формат кода: ровно шесть ASCII-цифр.
func ValidCode(code string) bool {
	if len(code) != CodeDigits {
		return false
	}

	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}

	return true
}
