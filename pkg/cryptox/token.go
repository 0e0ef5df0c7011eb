package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Reset codes are six decimal digits without a leading zero.
const (
	resetCodeMin = 100000
	resetCodeMax = 999999
)

// GenerateResetCode returns a uniformly distributed code in [100000, 999999].
func GenerateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(resetCodeMax-resetCodeMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate reset code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+resetCodeMin), nil
}
