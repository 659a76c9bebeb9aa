// Package random produces secrets meant to be shown to a human once.
package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const charset = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Password returns length characters drawn from an alphabet without the
// easily confused 0/O, 1/l/I.
func Password(length int) (string, error) {
	if length < 1 {
		return "", fmt.Errorf("password length %d", length)
	}

	max := big.NewInt(int64(len(charset)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("reading random source: %w", err)
		}
		b[i] = charset[n.Int64()]
	}
	return string(b), nil
}
