package claim

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"eppie/engine/library"
)

// Sign produces the claim-v1 signature: SHA-256 over the UTF-8
// payload, deterministic RFC 6979 ECDSA, low-S, DER wrapped in
// base64. Canonically equal name spellings sign to identical bytes,
// so repeated calls are byte-for-byte reproducible.
func Sign(name, publicKey string, priv *btcec.PrivateKey) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("name must not be blank")
	}
	if strings.TrimSpace(publicKey) == "" {
		return "", fmt.Errorf("publicKey must not be blank")
	}
	if priv == nil || priv.Key.IsZero() {
		return "", fmt.Errorf("private key must be a valid secp256k1 scalar")
	}
	digest := library.Sha256Digest([]byte(BuildPayloadV1(name, publicKey)))
	sig := ecdsa.Sign(priv, digest[:])
	return base64.StdEncoding.EncodeToString(sig.Serialize()), nil
}
