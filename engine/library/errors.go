package library

import "fmt"

// NoPublicKeyError reports that no public key could be discovered for
// a decentralized address. It carries the address so callers can tell
// which recipient failed without re-deriving it.
type NoPublicKeyError struct {
	Email string
}

func (e *NoPublicKeyError) Error() string {
	return fmt.Sprintf("no public key found for %s", e.Email)
}

// UnsupportedNetworkError reports a dispatch on a network no resolver
// is registered for.
type UnsupportedNetworkError struct {
	Network NetworkType
}

func (e *UnsupportedNetworkError) Error() string {
	return fmt.Sprintf("network %s is not supported", e.Network)
}
