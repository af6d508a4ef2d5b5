package ethereum

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"eppie/engine/library"
)

// RetrievePublicKey walks the address's outgoing transactions and
// recovers the signer's key from the first one whose recovered key
// actually derives the address. A throttled endpoint surfaces as
// *RateLimitError; an address with no usable history is (nil, nil).
func (c *ExplorerClient) RetrievePublicKey(ctx context.Context, address string) (*btcec.PublicKey, error) {
	if strings.TrimSpace(address) == "" {
		return nil, fmt.Errorf("address must not be blank")
	}
	info := c.GetAddressInfo(ctx, address)
	for _, hash := range info.OutgoingTxHashes {
		sig, err := c.SignatureInfo(ctx, hash)
		if err != nil {
			return nil, err
		}
		if sig == nil {
			continue
		}
		pub := RecoverPublicKey(sig)
		if pub == nil {
			library.LogCLI(fmt.Sprintf("signature on %s did not recover", hash), 3)
			continue
		}
		if strings.EqualFold(AddressFromPublicKey(pub), address) {
			return pub, nil
		}
	}
	return nil, nil
}

// RecoverPublicKey runs compact ECDSA recovery over the signing hash.
func RecoverPublicKey(sig *SignatureInfo) *btcec.PublicKey {
	compact := make([]byte, 65)
	compact[0] = sig.RecoveryID
	copy(compact[1:33], sig.R[:])
	copy(compact[33:], sig.S[:])
	pub, _, err := ecdsa.RecoverCompact(compact, sig.SigningHash)
	if err != nil {
		return nil
	}
	return pub
}

// AddressFromPublicKey derives the 0x account address: the last 20
// bytes of the keccak256 of the uncompressed point without its prefix.
func AddressFromPublicKey(pub *btcec.PublicKey) string {
	raw := pub.SerializeUncompressed()
	sum := keccak256(raw[1:])
	return "0x" + hex.EncodeToString(sum[12:])
}
