package identity

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/sasha-s/go-deadlock"

	"eppie/engine/library"
	"eppie/protocol/claim"
	"eppie/protocol/keys"
)

// EppieResolver handles native addresses. The address segment is
// first tried as a literal Base32E key (format and curve check both
// required); failing that it is treated as a registered name and
// looked up once. The looked-up value must itself be a literal key.
// It is never resolved again, so a name bound to another name cannot
// loop.
type EppieResolver struct {
	names NameService

	memoMu *deadlock.Mutex
	memo   map[string]string
}

func NewEppieResolver(names NameService) *EppieResolver {
	return &EppieResolver{
		names:  names,
		memoMu: &deadlock.Mutex{},
		memo:   make(map[string]string),
	}
}

func (r *EppieResolver) ResolvePublicKey(ctx context.Context, email library.Email) (*btcec.PublicKey, error) {
	segment := email.DecentralizedAddress
	if pub, err := keys.Decode(segment); err == nil {
		return pub, nil
	}
	name := claim.CanonicalizeName(segment)
	if name == "" {
		return nil, &library.NoPublicKeyError{Email: email.Original}
	}
	resolved, ok := r.cached(name)
	if !ok {
		var err error
		resolved, err = r.names.GetAddressByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if resolved != "" {
			r.remember(name, resolved)
		}
	}
	pub, err := keys.Decode(resolved)
	if err != nil {
		library.LogCLI(fmt.Sprintf("name %s resolved to an unusable value", name), 3)
		return nil, &library.NoPublicKeyError{Email: email.Original}
	}
	return pub, nil
}

func (r *EppieResolver) cached(name string) (string, bool) {
	r.memoMu.Lock()
	defer r.memoMu.Unlock()
	v, ok := r.memo[name]
	return v, ok
}

func (r *EppieResolver) remember(name, value string) {
	r.memoMu.Lock()
	defer r.memoMu.Unlock()
	r.memo[name] = value
}
