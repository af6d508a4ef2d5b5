package claim

import (
	"encoding/base64"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"eppie/engine/library"
	"eppie/protocol/keys"
)

var (
	curveOrder = btcec.S256().N
	halfOrder  = new(big.Int).Rsh(btcec.S256().N, 1)
)

// Verify checks a claim-v1 signature against the canonical payload for
// (name, publicKey). It is fail-closed: blank arguments, broken
// base64, anything but a strict two-integer DER sequence, r or s out
// of range, a high-S signature, an undecodable key, or a failed curve
// check all come back as false. It never panics and never returns an
// error.
func Verify(name, publicKey, signatureB64 string) bool {
	if strings.TrimSpace(name) == "" ||
		strings.TrimSpace(publicKey) == "" ||
		strings.TrimSpace(signatureB64) == "" {
		return false
	}
	der, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return false
	}
	r, s, ok := parseDERSignature(der)
	if !ok {
		return false
	}
	if r.Sign() <= 0 || s.Sign() <= 0 {
		return false
	}
	if r.Cmp(curveOrder) >= 0 || s.Cmp(halfOrder) > 0 {
		return false
	}
	pub, err := keys.Decode(publicKey)
	if err != nil {
		return false
	}
	var rs, ss btcec.ModNScalar
	if overflow := rs.SetByteSlice(r.Bytes()); overflow {
		return false
	}
	if overflow := ss.SetByteSlice(s.Bytes()); overflow {
		return false
	}
	digest := library.Sha256Digest([]byte(BuildPayloadV1(name, publicKey)))
	return ecdsa.NewSignature(&rs, &ss).Verify(digest[:], pub)
}

// parseDERSignature unpacks SEQUENCE{INTEGER r, INTEGER s} and nothing
// else. Valid claim signatures always fit short-form lengths, so
// long-form headers are rejected along with trailing data, non-integer
// elements and negative or padded integers.
func parseDERSignature(der []byte) (r, s *big.Int, ok bool) {
	if len(der) < 8 || der[0] != 0x30 {
		return nil, nil, false
	}
	if der[1] >= 0x80 || int(der[1]) != len(der)-2 {
		return nil, nil, false
	}
	rest := der[2:]
	r, rest, ok = parseDERInteger(rest)
	if !ok {
		return nil, nil, false
	}
	s, rest, ok = parseDERInteger(rest)
	if !ok || len(rest) != 0 {
		return nil, nil, false
	}
	return r, s, true
}

func parseDERInteger(b []byte) (*big.Int, []byte, bool) {
	if len(b) < 3 || b[0] != 0x02 {
		return nil, nil, false
	}
	n := int(b[1])
	if b[1] >= 0x80 || n == 0 || len(b) < 2+n {
		return nil, nil, false
	}
	v := b[2 : 2+n]
	if v[0]&0x80 != 0 {
		// negative integer
		return nil, nil, false
	}
	if n > 1 && v[0] == 0 && v[1]&0x80 == 0 {
		// non-minimal padding
		return nil, nil, false
	}
	return new(big.Int).SetBytes(v), b[2+n:], true
}
