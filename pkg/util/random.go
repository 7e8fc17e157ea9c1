package util

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// AlphanumericCharset is [A-Za-z0-9].
const AlphanumericCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateSecureCode returns a string of the given length drawn uniformly
// from charset using crypto/rand.
func GenerateSecureCode(length int, charset string) (string, error) {
	if length <= 0 || charset == "" {
		return "", fmt.Errorf("invalid code parameters: length=%d charset_len=%d", length, len(charset))
	}

	max := big.NewInt(int64(len(charset)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		b[i] = charset[n.Int64()]
	}
	return string(b), nil
}
