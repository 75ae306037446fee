package models

import "time"

// RefreshToken — запись о выданном refresh-токене (сессии устройства).
// Хранится только хэш секрета. Записи не удаляются: отзыв и ротация
// фиксируются через RevokedAt, а ReplacedBy связывает запись с преемником.
type RefreshToken struct {
	ID         int64
	UserID     int64
	TokenHash  string
	DeviceID   string
	DeviceName string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	LastUsedAt time.Time
	RevokedAt  *time.Time
	ReplacedBy *int64
}

// Revoked — токен отозван (logout, ротация, компрометация).
func (t *RefreshToken) Revoked() bool { return t.RevokedAt != nil }

// Rotated — токен был израсходован ротацией.
func (t *RefreshToken) Rotated() bool { return t.ReplacedBy != nil }

// Expired оценивает срок действия лениво, по переданным часам.
func (t *RefreshToken) Expired(now time.Time) bool { return !now.Before(t.ExpiresAt) }

// Active — не отозван и не истёк.
func (t *RefreshToken) Active(now time.Time) bool {
	return !t.Revoked() && !t.Expired(now)
}
