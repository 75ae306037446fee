// redact маскирует чувствительные данные перед записью в лог:
// контакты восстановления доступа, токены, пароли и коды сброса.
// Для отладки сохраняется минимум контекста (домен e-mail, хвост номера).
package redact

import "strings"

// Email оставляет первые две руны локальной части и домен.
func Email(s string) string {
	local, domain, ok := strings.Cut(s, "@")
	if !ok || strings.Contains(domain, "@") {
		return "***"
	}

	if r := []rune(local); len(r) > 2 {
		return string(r[:2]) + "***@" + domain
	}

	return "***@" + domain
}

// Phone оставляет последние две цифры номера.
func Phone(s string) string {
	digits := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}

	if len(digits) < 4 {
		return "***"
	}

	return "***" + string(digits[len(digits)-2:])
}

// Destination выбирает правило маскирования по виду контакта.
func Destination(s string) string {
	if strings.Contains(s, "@") {
		return Email(s)
	}

	return Phone(s)
}

// Code — заглушка вместо кода сброса в логах.
func Code() string { return "[REDACTED_CODE]" }
