package tools

import (
	"crypto/rand"
	"math/big"
)

const numbers = "0123456789"

// RandomNumbers generates a numeric one-time code. Codes are security
// material, so this draws from crypto/rand rather than math/rand.
func RandomNumbers(length int) string {
	b := make([]byte, length)
	max := big.NewInt(int64(len(numbers)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing means the platform RNG is broken;
			// nothing sensible to do but stop.
			panic(err)
		}
		b[i] = numbers[n.Int64()]
	}
	return string(b)
}
