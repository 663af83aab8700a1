// Package email normalizes subscriber addresses. Subscriptions, accounts and
// dashboard queries all compare the normalized form.
package email

import (
	"net/mail"
	"strings"
)

// maxLength matches the RFC 5321 path limit and the column width.
const maxLength = 254

// Normalize trims and lower-cases an address.
func Normalize(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// Valid reports whether addr is a bare address ("a@x.com", not "A <a@x.com>").
func Valid(addr string) bool {
	if addr == "" || len(addr) > maxLength {
		return false
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil {
		return false
	}
	return parsed.Address == addr
}

// Dedupe normalizes, drops empties and removes duplicates, preserving order.
func Dedupe(addrs []string) []string {
	if len(addrs) == 0 {
		return addrs
	}
	seen := make(map[string]struct{}, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		n := Normalize(a)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
