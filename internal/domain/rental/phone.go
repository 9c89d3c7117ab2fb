package rental

import (
	"strings"
)

// NormalizePhone turns a channel address into the canonical phone key stored
// on landlords: the server suffix ("@s.whatsapp.net"), any device suffix
// (":12"), separators and a leading "+" are removed.
//
//	"+256 700-123456@s.whatsapp.net" -> "256700123456"
func NormalizePhone(address string) string {
	s := strings.TrimSpace(address)
	if i := strings.IndexByte(s, '@'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(s, "+")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ' ', '-', '(', ')', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MaskPhone hides the middle digits of a phone number for logging.
// Numbers too short to mask are fully starred.
func MaskPhone(phone string) string {
	p := NormalizePhone(phone)
	if len(p) <= 6 {
		return strings.Repeat("*", len(p))
	}
	return p[:3] + "***" + p[len(p)-3:]
}
