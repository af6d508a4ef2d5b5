package keys

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
)

// CompressedKeySize is the length of a compressed secp256k1 point.
const CompressedKeySize = 33

// Encode renders a public key in its wire form: the compressed point
// as Base32E text. This is the form that appears in decentralized
// addresses and claim payloads.
func Encode(pub *btcec.PublicKey) string {
	return EncodeBase32E(pub.SerializeCompressed())
}

// Decode parses Base32E text back into a public key. The input must
// decode to exactly 33 bytes with an 0x02/0x03 prefix and the point
// must be on the curve.
func Decode(s string) (*btcec.PublicKey, error) {
	if s == "" {
		return nil, fmt.Errorf("empty public key")
	}
	raw, err := DecodeBase32E(s)
	if err != nil {
		return nil, fmt.Errorf("decoding public key: %w", err)
	}
	if len(raw) != CompressedKeySize {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", CompressedKeySize, len(raw))
	}
	if raw[0] != 0x02 && raw[0] != 0x03 {
		return nil, fmt.Errorf("prefix 0x%02x is not a compressed point", raw[0])
	}
	pub, err := btcec.ParsePubKey(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}
	return pub, nil
}

// Valid reports whether s is a well-formed Base32E compressed key.
func Valid(s string) bool {
	_, err := Decode(s)
	return err == nil
}
