package entity

import (
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	orderCodePrefix = "TZ"
	orderCodeLength = 8
)

// NewOrderCode returns "TZ" followed by 8 random upper-case base36 characters.
func NewOrderCode() string {
	id := uuid.New()
	s := strings.ToUpper(new(big.Int).SetBytes(id[:]).Text(36))
	if len(s) < orderCodeLength {
		s = strings.Repeat("0", orderCodeLength-len(s)) + s
	}
	return orderCodePrefix + s[len(s)-orderCodeLength:]
}

// NormalizeOrderCode trims and upper-cases a code typed by a customer.
func NormalizeOrderCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsOrderCode reports whether code has the shape NewOrderCode produces.
func IsOrderCode(code string) bool {
	if len(code) != len(orderCodePrefix)+orderCodeLength || !strings.HasPrefix(code, orderCodePrefix) {
		return false
	}
	for _, r := range code[len(orderCodePrefix):] {
		if (r < '0' || r > '9') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
