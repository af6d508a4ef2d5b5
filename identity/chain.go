package identity

import (
	"context"

	"github.com/btcsuite/btcd/btcec/v2"

	"eppie/chains/bitcoin"
	"eppie/chains/ethereum"
	"eppie/engine/library"
)

// KeySource is the chain-side lookup both explorer clients provide:
// recover the key that controls an address from its spend history.
type KeySource interface {
	RetrievePublicKey(ctx context.Context, address string) (*btcec.PublicKey, error)
}

// ChainResolver adapts a KeySource to the Resolver contract: a chain
// address whose history yields no key is a typed "no public key"
// condition carrying the offending email, not a generic not-found.
type ChainResolver struct {
	source KeySource
}

func NewBitcoinResolver(client *bitcoin.Client) *ChainResolver {
	return &ChainResolver{source: client}
}

func NewEthereumResolver(client *ethereum.ExplorerClient) *ChainResolver {
	return &ChainResolver{source: client}
}

// NewChainResolver is the seam tests and alternative explorers use.
func NewChainResolver(source KeySource) *ChainResolver {
	return &ChainResolver{source: source}
}

func (r *ChainResolver) ResolvePublicKey(ctx context.Context, email library.Email) (*btcec.PublicKey, error) {
	pub, err := r.source.RetrievePublicKey(ctx, email.DecentralizedAddress)
	if err != nil {
		return nil, err
	}
	if pub == nil {
		return nil, &library.NoPublicKeyError{Email: email.Original}
	}
	return pub, nil
}
