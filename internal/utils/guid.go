package utils

import (
	"crypto/rand"
	"math/big"
)

// guid alphabet avoids look-alike characters (0/o, 1/l/i)
const guidChars = "23456789abcdefghjkmnpqrstuvwxyz"

// NewGUID returns a random short identifier of length n.
func NewGUID(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(guidChars)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b[i] = guidChars[idx.Int64()]
	}
	return string(b)
}
