package domain

import "strings"

// UserServer — серверная часть JID обычного пользователя
const UserServer = "s.whatsapp.net"

// NormalizePhone оставляет только цифры и дописывает код страны к 10-значному
// номеру. Номера другой длины возвращаются как есть.
func NormalizePhone(raw, countryCode string) string {
	var b strings.Builder
	b.Grow(len(raw) + len(countryCode))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 10 && !strings.HasPrefix(digits, countryCode) {
		return countryCode + digits
	}
	return digits
}

// ChatID builds the canonical destination identifier for a digits-only phone.
func ChatID(digits string) string {
	return digits + "@" + UserServer
}

// StripSuffix returns the user part of a JID: "919876543210:12@s.whatsapp.net" -> "919876543210".
func StripSuffix(id string) string {
	if i := strings.IndexByte(id, '@'); i >= 0 {
		id = id[:i]
	}
	if i := strings.IndexByte(id, ':'); i >= 0 {
		id = id[:i]
	}
	return id
}
