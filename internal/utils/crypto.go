package utils

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

// RandomInt returns a uniform random integer in [0, max) from crypto/rand.
// An unreadable entropy source is unrecoverable and panics.
func RandomInt(max int) int {
	if max <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic("failed to generate random number: " + err.Error())
	}
	return int(n.Int64())
}

// GenerateRandomBytes returns n bytes from crypto/rand.
func GenerateRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// GenerateRandomHex returns a hex string encoding n random bytes.
func GenerateRandomHex(n int) (string, error) {
	b, err := GenerateRandomBytes(n)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
