package identity

import (
	"context"

	"github.com/btcsuite/btcd/btcec/v2"

	"eppie/engine/library"
)

// Resolver turns a decentralized email address into a usable public
// key. Higher layers (mailbox creation, message encryption) go
// through the Composite; the per-network variants live behind it.
type Resolver interface {
	ResolvePublicKey(ctx context.Context, email library.Email) (*btcec.PublicKey, error)
}

// NameService resolves a registered name to whatever value the name
// store has bound to it. messaging/decstore implements it.
type NameService interface {
	GetAddressByName(ctx context.Context, name string) (string, error)
}

// Composite dispatches to the resolver registered for the address's
// network. An unregistered network is an explicit error arm, never a
// nil dereference.
type Composite struct {
	resolvers map[library.NetworkType]Resolver
}

func NewComposite(resolvers map[library.NetworkType]Resolver) *Composite {
	m := make(map[library.NetworkType]Resolver, len(resolvers))
	for network, r := range resolvers {
		m[network] = r
	}
	return &Composite{resolvers: m}
}

func (c *Composite) ResolvePublicKey(ctx context.Context, email library.Email) (*btcec.PublicKey, error) {
	r, ok := c.resolvers[email.Network]
	if !ok {
		return nil, &library.UnsupportedNetworkError{Network: email.Network}
	}
	return r.ResolvePublicKey(ctx, email)
}
