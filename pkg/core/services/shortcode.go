package services

import (
	"crypto/rand"
	"math/big"
)

// Alphabet is the 62-symbol set short codes are drawn from.
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeLength is the fixed length of a generated short code.
const CodeLength = 6

// GenerateCode returns a random code of the given length drawn uniformly
// from alphabet, sourcing randomness per call so codes are not guessable in
// bulk. At length 6 the code space is large but collisions are still expected
// at scale; callers must rely on the store's unique index rather than assume
// the result is free.
func GenerateCode(alphabet string, length int) (string, error) {
	b := make([]byte, length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b), nil
}
