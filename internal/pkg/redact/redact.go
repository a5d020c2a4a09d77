// redact маскирует персональные данные перед записью в лог:
// e-mail клиентов, телефоны, значения сессионных cookie.
package redact

import "strings"

// Email оставляет первые две руны локальной части и домен целиком.
func Email(s string) string {
	parts := strings.Split(s, "@")
	if len(parts) != 2 {
		return "***"
	}

	local, domain := []rune(parts[0]), parts[1]
	if len(local) > 2 {
		return string(local[:2]) + "***@" + domain
	}

	return "***@" + domain
}

// Phone оставляет только две последние цифры.
func Phone(s string) string {
	r := []rune(s)
	if len(r) <= 2 {
		return "***"
	}

	return "***" + string(r[len(r)-2:])
}

func Cookie() string { return "[REDACTED_COOKIE]" }
