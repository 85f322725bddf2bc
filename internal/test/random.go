package test

import (
	"math/rand/v2"
	"strings"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomString returns a lowercase alphanumeric string with length in [minLen, maxLen].
func RandomString(minLen, maxLen int) string {
	minLen = max(minLen, 1)
	maxLen = max(maxLen, minLen)
	n := minLen + rand.IntN(maxLen-minLen+1)

	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(alphanumeric[rand.IntN(len(alphanumeric))])
	}
	return b.String()
}

// RandomEmail returns a unique-looking address on the example.com domain.
func RandomEmail() string {
	return RandomString(6, 12) + "@example.com"
}

// RandomStudent returns student details with a random id and email.
func RandomStudent() (name, id, email string) {
	return "Student " + RandomString(4, 8), "STU-" + strings.ToUpper(RandomString(6, 6)), RandomEmail()
}
