package provider

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	passwordUpper = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	passwordLower = "abcdefghijklmnopqrstuvwxyz"
	passwordDigit = "0123456789"
	passwordPunct = "!#$%&*+-.:;<=>?@^_~"
)

const minPasswordLength = 9

// GeneratePassword produces a random password meeting the provider's
// policy: at least one character from each of upper, lower, digit and
// punctuation. Candidates are sampled whole and resampled until all four
// classes are present.
func GeneratePassword(length int) string {
	if length < minPasswordLength {
		length = minPasswordLength
	}
	alphabet := passwordUpper + passwordLower + passwordDigit + passwordPunct
	for {
		candidate := randomString(alphabet, length)
		if strings.ContainsAny(candidate, passwordUpper) &&
			strings.ContainsAny(candidate, passwordLower) &&
			strings.ContainsAny(candidate, passwordDigit) &&
			strings.ContainsAny(candidate, passwordPunct) {
			return candidate
		}
	}
}

func randomString(alphabet string, n int) string {
	max := big.NewInt(int64(len(alphabet)))
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b.WriteByte(alphabet[idx.Int64()])
	}
	return b.String()
}
