package library

// NetworkType identifies which network an email-style address is
// anchored to. It drives resolver and codec selection.
type NetworkType int

const (
	NetworkUnsupported NetworkType = iota
	NetworkEppie
	NetworkBitcoin
	NetworkEthereum
)

func (n NetworkType) String() string {
	switch n {
	case NetworkEppie:
		return "eppie"
	case NetworkBitcoin:
		return "bitcoin"
	case NetworkEthereum:
		return "ethereum"
	}
	return "unsupported"
}

// Email is the decentralized view of an email-style address. The
// DecentralizedAddress segment is either a literal public key, a
// registered name, or a chain address, depending on Network.
type Email struct {
	Original             string
	Network              NetworkType
	DecentralizedAddress string
}

type Sha256 = string
