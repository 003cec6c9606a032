package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	digits       = "0123456789"
	alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateNumericCode returns a random code of the given length drawn from
// the digits 0-9, suitable for SMS one-time codes.
func GenerateNumericCode(length int) (string, error) {
	return generateFromCharset(digits, length)
}

// GenerateAlphanumericToken returns a random mixed-case alphanumeric token,
// used for email verification and password recovery links.
func GenerateAlphanumericToken(length int) (string, error) {
	return generateFromCharset(alphanumeric, length)
}

func generateFromCharset(charset string, length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("cryptox: code length must be positive, got %d", length)
	}

	out := make([]byte, length)
	maxIdx := big.NewInt(int64(len(charset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, maxIdx)
		if err != nil {
			return "", fmt.Errorf("cryptox: failed to read random source: %w", err)
		}
		out[i] = charset[n.Int64()]
	}

	return string(out), nil
}
