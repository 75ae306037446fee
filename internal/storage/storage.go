// storage задаёт контракт хранилища Paleta: пользователи, refresh-токены,
// коды сброса пароля и палитры. Реализации: postgres (боевая) и memory
// (тесты и локальный запуск без БД).
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/pribylovaa/paleta/internal/models"
	"github.com/pribylovaa/paleta/internal/pagination"
)

var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (username, контакт, хэш токена, имя палитры).
	ErrAlreadyExists = errors.New("already exists")
	// ErrAttemptsExhausted — условный инкремент попыток не выполнен: предел уже достигнут.
	ErrAttemptsExhausted = errors.New("attempts exhausted")
)

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создаёт пользователя и заполняет user.ID.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id int64) (*models.User, error)
	// UserByUsername находит пользователя по имени без учёта регистра.
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	// UserByContact находит пользователя по нормализованному e-mail или телефону.
	UserByContact(ctx context.Context, channel models.Channel, destination string) (*models.User, error)
	// UpdatePassword заменяет хэш пароля.
	UpdatePassword(ctx context.Context, id int64, passwordHash string, now time.Time) error
	// LockUser блокирует пользователя до конца транзакции. Транзакции, меняющие
	// коды сброса одного пользователя, выполняются по очереди.
	LockUser(ctx context.Context, id int64) error
}

// RefreshTokenStorage выполняет операции над refresh-токенами.
// Записи никогда не удаляются.
type RefreshTokenStorage interface {
	// SaveRefreshToken сохраняет запись и заполняет token.ID.
	// Коллизия хэша — ErrAlreadyExists, транзакция при этом остаётся рабочей.
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error
	// RefreshTokenByHash находит запись по хэшу секрета.
	RefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshToken, error)
	// LockRefreshToken находит запись по хэшу и блокирует её до конца транзакции.
	LockRefreshToken(ctx context.Context, hash string) (*models.RefreshToken, error)
	// MarkRefreshTokenRotated отзывает запись как израсходованную ротацией.
	MarkRefreshTokenRotated(ctx context.Context, id, replacedBy int64, now time.Time) error
	// RevokeRefreshToken отзывает ещё не отозванную запись.
	// Возвращает, существовала ли запись с таким хэшем вообще.
	RevokeRefreshToken(ctx context.Context, hash string, now time.Time) (bool, error)
	// RevokeRefreshLineage отзывает все активные записи-потомки по цепочке replaced_by.
	RevokeRefreshLineage(ctx context.Context, id int64, now time.Time) (int64, error)
	// RevokeUserRefreshTokens отзывает все активные записи пользователя.
	RevokeUserRefreshTokens(ctx context.Context, userID int64, now time.Time) (int64, error)
}

// ResetCodeStorage выполняет операции над кодами сброса пароля.
type ResetCodeStorage interface {
	// SaveResetCode сохраняет код и заполняет code.ID.
	SaveResetCode(ctx context.Context, code *models.PasswordResetCode) error
	// ActiveResetCode возвращает самый новый активный код для (user, channel, destination).
	ActiveResetCode(ctx context.Context, userID int64, channel models.Channel, destination string, now time.Time) (*models.PasswordResetCode, error)
	// ReserveResetAttempt атомарно увеличивает attempts, только если attempts < maxAttempts.
	// Возвращает новое значение или ErrAttemptsExhausted.
	ReserveResetAttempt(ctx context.Context, id int64, maxAttempts int) (int, error)
	// StaleResetCodeExists сообщает, есть ли у пользователя неактивный код с таким хэшем.
	StaleResetCodeExists(ctx context.Context, userID int64, codeHash string, now time.Time) (bool, error)
	// MarkResetCodeUsed помечает код использованным.
	MarkResetCodeUsed(ctx context.Context, id int64, now time.Time) error
	// SupersedeResetCodes помечает использованными все активные коды пользователя.
	SupersedeResetCodes(ctx context.Context, userID int64, now time.Time) (int64, error)
	// DeleteStaleResetCodes удаляет коды, истёкшие или использованные раньше before.
	DeleteStaleResetCodes(ctx context.Context, before time.Time) (int64, error)
}

// PaletteStorage выполняет операции над палитрами.
type PaletteStorage interface {
	// SavePalette создаёт палитру и заполняет ID; дубль имени у владельца — ErrAlreadyExists.
	SavePalette(ctx context.Context, p *models.Palette) error
	// PaletteByID находит палитру по ID.
	PaletteByID(ctx context.Context, id int64) (*models.Palette, error)
	// ListPalettes отдаёт до limit палитр владельца в порядке (created_at, id) DESC,
	// строго после курсора, если он задан.
	ListPalettes(ctx context.Context, userID int64, after *pagination.Cursor, limit int) ([]models.Palette, error)
	// PaletteNames возвращает имена палитр владельца, начинающиеся с prefix.
	PaletteNames(ctx context.Context, userID int64, prefix string) ([]string, error)
	// UpdatePalette сохраняет имя и цвета палитры.
	UpdatePalette(ctx context.Context, p *models.Palette) error
	// DeletePalette удаляет палитру.
	DeletePalette(ctx context.Context, id int64) error
}

// TxFunc — единица работы внутри транзакции. tx — хранилище, привязанное к транзакции.
type TxFunc func(ctx context.Context, tx Storage) error

// Storage задаёт контракт работы с хранилищем.
type Storage interface {
	UserStorage
	RefreshTokenStorage
	ResetCodeStorage
	PaletteStorage
	// InTx выполняет fn атомарно: ошибка fn откатывает все изменения.
	// Вложенный вызов выполняется в уже открытой транзакции.
	InTx(ctx context.Context, fn TxFunc) error
	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
	Close()
}
