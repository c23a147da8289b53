// Package challenge issues and redeems the one-time codes that gate a reservation.
package challenge

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
)

const (
	codeDigits = 6
	codeMin    = 100000
	codeSpan   = 900000
)

// ErrInvalidCodeFormat is returned when a submitted code is not exactly six ASCII digits.
var ErrInvalidCodeFormat = errors.New("challenge: code must be 6 digits")

// GenerateCode returns a 6-digit code drawn uniformly from 100000–999999 using crypto/rand.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}

// HashCode returns a SHA-256 hash of the code, hex-encoded.
func HashCode(code string) string {
	h := sha256.Sum256([]byte(code))
	return hex.EncodeToString(h[:])
}

// ValidateCodeFormat checks that code is exactly six ASCII digits.
func ValidateCodeFormat(code string) error {
	if len(code) != codeDigits {
		return ErrInvalidCodeFormat
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return ErrInvalidCodeFormat
		}
	}
	return nil
}
