package ethereum

import (
	"math/big"

	"golang.org/x/crypto/sha3"
)

// Minimal RLP encoder, just enough to rebuild the three signing
// payloads byte-for-byte. Items are []byte strings, *big.Int
// quantities (minimal big-endian, zero encodes as the empty string)
// and []rlpItem lists.

type rlpItem interface{}

func rlpEncode(item rlpItem) []byte {
	switch v := item.(type) {
	case []byte:
		return rlpString(v)
	case *big.Int:
		return rlpString(rlpQuantity(v))
	case []rlpItem:
		var payload []byte
		for _, it := range v {
			payload = append(payload, rlpEncode(it)...)
		}
		return append(rlpHeader(len(payload), 0xc0), payload...)
	}
	// the fixed shapes this package builds never reach here
	return nil
}

func rlpString(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return b
	}
	return append(rlpHeader(len(b), 0x80), b...)
}

func rlpHeader(n int, offset byte) []byte {
	if n < 56 {
		return []byte{offset + byte(n)}
	}
	size := big.NewInt(int64(n)).Bytes()
	return append([]byte{offset + 55 + byte(len(size))}, size...)
}

// rlpQuantity strips an integer to its minimal big-endian form.
func rlpQuantity(v *big.Int) []byte {
	if v == nil || v.Sign() == 0 {
		return nil
	}
	return v.Bytes()
}

func keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}
