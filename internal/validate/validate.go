package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reLogin = regexp.MustCompile(`^[A-Za-z0-9_.-]{2,32}$`)
	rePrice = regexp.MustCompile(`^[0-9]{1,7}(\.[0-9]{1,2})?$`)
	reTime  = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// ID validates a simple resource identifier (product/store/list ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Amount parses a cart or stock quantity. Unlike search paging this is a
// hard reject, not a clamp: a bad quantity must bounce back to the form.
func Amount(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 9999 {
		return 0, false
	}
	return n, true
}

// Price validates a monetary amount as a fixed-point decimal string.
func Price(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePrice.MatchString(s)
}

// Model validates a product model name.
func Model(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 64 {
		return "", false
	}
	return s, true
}

// Login validates an account login.
func Login(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reLogin.MatchString(s)
}

// TimeOfDay validates HH:MM opening/closing times.
func TimeOfDay(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reTime.MatchString(s)
}

// Password enforces a simple complexity window for login checks.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 64 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}
