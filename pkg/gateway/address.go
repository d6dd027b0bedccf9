package gateway

import (
	"errors"
	"strings"
)

// DomainSuffix is the gateway's conversation endpoint domain.
const DomainSuffix = "@s.whatsapp.net"

// countryCode is prefixed to national 10/11-digit numbers. Numbers of
// 12/13 digits must already carry it; 12/13-digit numbers with a
// different country code are rejected rather than guessed at.
const countryCode = "55"

// ErrUnroutablePhone is returned when a phone string cannot be mapped
// to a protocol address.
var ErrUnroutablePhone = errors.New("phone number cannot be mapped to a protocol address")

// NormalizeAddress maps a raw phone string (punctuation and spaces
// allowed) to the gateway's protocol address. It is deterministic and
// performs no I/O: the same input always yields the same address or
// the same rejection.
func NormalizeAddress(phone string) (string, error) {
	digits := keepDigits(phone)

	switch {
	case len(digits) == 10 || len(digits) == 11:
		return countryCode + digits + DomainSuffix, nil
	case len(digits) == 12 || len(digits) == 13:
		if strings.HasPrefix(digits, countryCode) {
			return digits + DomainSuffix, nil
		}
		return "", ErrUnroutablePhone
	default:
		return "", ErrUnroutablePhone
	}
}

func keepDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
