package models

import "time"

// User — учётная запись. Email и Phone — контакты для восстановления доступа;
// пустая строка означает, что контакт не задан.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Email        string
	Phone        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Channel — канал доставки кода сброса пароля.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

// Valid сообщает, поддерживается ли канал.
func (c Channel) Valid() bool {
	return c == ChannelEmail || c == ChannelPhone
}
