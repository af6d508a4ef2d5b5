package keys

import (
	"encoding/base32"
	"strings"
)

// base32eAlphabet is the email-safe alphabet: lowercase letters, then
// the digits 2-7, no padding. Addresses built from it survive
// case-folding mail servers because decoding lowers its input first.
const base32eAlphabet = "abcdefghijklmnopqrstuvwxyz234567"

var base32e = base32.NewEncoding(base32eAlphabet).WithPadding(base32.NoPadding)

// EncodeBase32E renders raw bytes as Base32E text.
func EncodeBase32E(b []byte) string {
	return base32e.EncodeToString(b)
}

// DecodeBase32E parses Base32E text, accepting any casing.
func DecodeBase32E(s string) ([]byte, error) {
	return base32e.DecodeString(strings.ToLower(s))
}
