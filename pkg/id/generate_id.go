package id

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// ApplicationPrefix is the two-letter prefix of public loan application ids.
const ApplicationPrefix = "LA"

const applicationDigits = 8

// NewApplicationID returns ApplicationPrefix followed by 8 random decimal digits,
// e.g. "LA04821937". The space is small (1e8) so callers must handle collisions.
func NewApplicationID() string {
	return newPrefixedDigits(ApplicationPrefix, applicationDigits)
}

func newPrefixedDigits(prefix string, digits int) string {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		panic("id: crypto/rand unavailable: " + err.Error())
	}
	s := n.String()
	var b strings.Builder
	b.Grow(len(prefix) + digits)
	b.WriteString(prefix)
	for i := len(s); i < digits; i++ {
		b.WriteByte('0')
	}
	b.WriteString(s)
	return b.String()
}
