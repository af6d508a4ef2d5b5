package ethereum

import "fmt"

// TxType tags the three transaction envelopes the explorer can return.
type TxType int

const (
	TxTypeLegacy     TxType = 0
	TxTypeAccessList TxType = 1 // EIP-2930
	TxTypeDynamicFee TxType = 2 // EIP-1559
)

// AddressInfo is the result of paging the tx-list endpoint: the
// distinct hashes of transactions sent from the address.
type AddressInfo struct {
	Address          string
	OutgoingTxHashes []string
}

// SignatureInfo carries everything needed to recover the signer of
// one transaction: the hash its signature covers and the normalized
// signature components.
type SignatureInfo struct {
	SigningHash []byte
	RecoveryID  byte // 27 or 28
	R           [32]byte
	S           [32]byte
}

// RateLimitError marks an explorer answer that was a throttle, not
// data. The paged discovery path retries through it; the single
// transaction lookup surfaces it to the caller instead.
type RateLimitError struct {
	Endpoint string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by %s", e.Endpoint)
}

// rpcTransaction mirrors the etherscan proxy's
// eth_getTransactionByHash result. All quantities are 0x hex strings.
type rpcTransaction struct {
	Type                 string            `json:"type"`
	ChainID              string            `json:"chainId"`
	Nonce                string            `json:"nonce"`
	GasPrice             string            `json:"gasPrice"`
	Gas                  string            `json:"gas"`
	MaxFeePerGas         string            `json:"maxFeePerGas"`
	MaxPriorityFeePerGas string            `json:"maxPriorityFeePerGas"`
	To                   string            `json:"to"`
	Value                string            `json:"value"`
	Input                string            `json:"input"`
	AccessList           []accessListEntry `json:"accessList"`
	V                    string            `json:"v"`
	R                    string            `json:"r"`
	S                    string            `json:"s"`
	YParity              string            `json:"yParity"`
}

type accessListEntry struct {
	Address     string   `json:"address"`
	StorageKeys []string `json:"storageKeys"`
}
