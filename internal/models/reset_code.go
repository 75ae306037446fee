package models

import "time"

// PasswordResetCode — одноразовый код сброса пароля.
// У пользователя одновременно активен не более одного кода.
type PasswordResetCode struct {
	ID          int64
	UserID      int64
	Channel     Channel
	Destination string
	CodeHash    string
	Attempts    int
	CreatedAt   time.Time
	ExpiresAt   time.Time
	UsedAt      *time.Time
}

// Active — код не использован/не вытеснен и не истёк.
func (c *PasswordResetCode) Active(now time.Time) bool {
	return c.UsedAt == nil && now.Before(c.ExpiresAt)
}
