// Package otpx generates and checks short-lived numeric one-time codes
// delivered to users out-of-band.
package otpx

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"
)

// DefaultDigits is the standard code length.
const DefaultDigits = 6

// DefaultTTL is the standard validity window for a freshly issued code.
const DefaultTTL = 10 * time.Minute

// Generate returns a random numeric code of the given length. Leading zeros
// are preserved, so the code is always exactly digits characters long.
func Generate(digits int) (string, error) {
	if digits <= 0 {
		digits = DefaultDigits
	}

	code := make([]byte, digits)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("otpx: generate code: %w", err)
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}

// Matches reports whether submitted equals stored, comparing in constant
// time so the check leaks no prefix information.
func Matches(stored, submitted string) bool {
	if len(stored) != len(submitted) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}

// Expired reports whether a code issued with the given expiry is no longer
// acceptable at now. A code is valid only while expiry is strictly in the
// future.
func Expired(expiry, now time.Time) bool {
	return !expiry.After(now)
}
