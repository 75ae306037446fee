// accesstoken выпускает и проверяет короткоживущие access-токены (JWT HS256).
//
// Проверка не обращается к хранилищу: подпись, издатель, аудитория, срок
// и тип токена проверяются по секрету и часам, переданным вызывающим.
package accesstoken

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TypeAccess — значение claim "type" у access-токенов.
const TypeAccess = "access"

// leeway — допуск на рассинхронизацию часов при проверке exp/iat.
const leeway = 5 * time.Second

var (
	// ErrTokenInvalid — неверная подпись/алгоритм, издатель, аудитория, тип или subject.
	ErrTokenInvalid = errors.New("access token invalid")
	// ErrTokenExpired — срок действия токена истёк.
	ErrTokenExpired = errors.New("access token expired")
	// ErrEmptySecret — секрет подписи не задан.
	ErrEmptySecret = errors.New("signing secret is empty")
)

// Options — параметры кодека. TTL меньше минуты поднимается до минуты.
type Options struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Claims — проверенное содержимое токена.
type Claims struct {
	UserID    int64
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type accessClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// Codec неизменяем после создания и безопасен для конкурентного использования.
type Codec struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

// New создаёт кодек.
func New(opts Options) (*Codec, error) {
	const op = "accesstoken.New"

	if opts.Secret == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptySecret)
	}

	return &Codec{
		secret:   []byte(opts.Secret),
		issuer:   opts.Issuer,
		audience: opts.Audience,
		ttl:      max(opts.TTL, time.Minute),
	}, nil
}

// Issue подписывает токен для пользователя и возвращает его вместе со сроком жизни в секундах.
func (c *Codec) Issue(userID int64, now time.Time) (string, int, error) {
	const op = "accesstoken.Issue"

	claims := accessClaims{
		Type: TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", op, err)
	}

	return signed, int(c.ttl / time.Second), nil
}

// Verify проверяет токен относительно момента now.
// Истёкший токен даёт ErrTokenExpired, любые другие нарушения — ErrTokenInvalid.
func (c *Codec) Verify(token string, now time.Time) (*Claims, error) {
	const op = "accesstoken.Verify"

	parsed, err := jwt.ParseWithClaims(token, &accessClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, ErrTokenInvalid
			}

			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(leeway),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return nil, fmt.Errorf("%s: %w", op, ErrTokenInvalid)
	}

	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid || claims.Type != TypeAccess {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenInvalid)
	}

	uid, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || uid <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenInvalid)
	}

	out := &Claims{
		UserID: uid,
		JTI:    claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}

	return out, nil
}
