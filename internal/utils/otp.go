package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/taskhive/taskhive-api/internal/constants"
)

// GenerateOTP generates a random numeric one-time passcode, zero-padded
// to the configured length.
func GenerateOTP() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < constants.OTPLength; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}

	return fmt.Sprintf("%0*d", constants.OTPLength, n), nil
}
