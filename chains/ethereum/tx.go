package ethereum

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"eppie/engine/library"
)

var v35 = big.NewInt(35)

// SignatureInfo fetches a transaction through the JSON-RPC proxy and
// rebuilds the exact payload its signature was made over, per
// envelope type. Anything missing or malformed yields (nil, nil). A
// throttled endpoint is the one failure the caller is told about,
// because this path does not retry internally.
func (c *ExplorerClient) SignatureInfo(ctx context.Context, txHash string) (*SignatureInfo, error) {
	if strings.TrimSpace(txHash) == "" {
		return nil, nil
	}
	q := url.Values{}
	q.Set("module", "proxy")
	q.Set("action", "eth_getTransactionByHash")
	q.Set("txhash", txHash)
	body, status, err := c.get(ctx, q)
	if err != nil {
		library.LogCLI(fmt.Sprintf("tx lookup %s: %s", txHash, err), 3)
		return nil, nil
	}
	if rateLimited(status, body) {
		return nil, &RateLimitError{Endpoint: "eth_getTransactionByHash"}
	}
	if status != http.StatusOK {
		library.LogCLI(fmt.Sprintf("tx lookup %s: http response error code %d", txHash, status), 3)
		return nil, nil
	}
	var reply struct {
		Result *rpcTransaction `json:"result"`
	}
	if err := json.Unmarshal(body, &reply); err != nil || reply.Result == nil {
		library.LogCLI(fmt.Sprintf("malformed tx response for %s\n%s", txHash, spew.Sdump(body)), 3)
		return nil, nil
	}
	return signatureInfoFromTx(reply.Result), nil
}

func signatureInfoFromTx(tx *rpcTransaction) *SignatureInfo {
	r, okR := hexWord(tx.R)
	s, okS := hexWord(tx.S)
	if !okR || !okS {
		return nil
	}
	typ, ok := classifyTxType(tx)
	if !ok {
		return nil
	}
	var hash []byte
	switch typ {
	case TxTypeLegacy:
		hash = signingHashLegacy(tx)
	case TxTypeAccessList:
		hash = signingHashAccessList(tx)
	case TxTypeDynamicFee:
		hash = signingHashDynamicFee(tx)
	}
	if hash == nil {
		return nil
	}
	rec, ok := recoveryID(tx)
	if !ok {
		return nil
	}
	return &SignatureInfo{SigningHash: hash, RecoveryID: rec, R: r, S: s}
}

// classifyTxType reads the explicit type tag when present and falls
// back to fee-market field sniffing for providers that omit it.
func classifyTxType(tx *rpcTransaction) (TxType, bool) {
	if tx.Type != "" {
		n, ok := hexQuantity(tx.Type)
		if !ok || !n.IsInt64() {
			return 0, false
		}
		switch n.Int64() {
		case 0:
			return TxTypeLegacy, true
		case 1:
			return TxTypeAccessList, true
		case 2:
			return TxTypeDynamicFee, true
		}
		return 0, false
	}
	if tx.MaxFeePerGas != "" || tx.MaxPriorityFeePerGas != "" {
		return TxTypeDynamicFee, true
	}
	if len(tx.AccessList) > 0 {
		return TxTypeAccessList, true
	}
	return TxTypeLegacy, true
}

// signingHashLegacy hashes RLP(nonce, gasPrice, gasLimit, to, value,
// data[, chainId, 0, 0]). The trailing triplet is present only when a
// chain id is known, explicitly or recovered from an EIP-155 v.
// Omitting it for v of 27/28 is load-bearing: including it changes
// the hash.
func signingHashLegacy(tx *rpcTransaction) []byte {
	nonce, ok1 := hexQuantity(tx.Nonce)
	gasPrice, ok2 := hexQuantity(tx.GasPrice)
	gas, ok3 := hexQuantity(tx.Gas)
	value, ok4 := hexQuantity(tx.Value)
	to, ok5 := hexBytes(tx.To)
	data, ok6 := hexBytes(tx.Input)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
		return nil
	}
	items := []rlpItem{nonce, gasPrice, gas, to, value, data}
	if chainID, known := legacyChainID(tx); known {
		items = append(items, chainID, new(big.Int), new(big.Int))
	}
	return keccak256(rlpEncode(items))
}

// legacyChainID returns the chain id bound into a legacy signature:
// explicit when the node reports one, recovered from v when v >= 35
// per EIP-155, absent otherwise.
func legacyChainID(tx *rpcTransaction) (*big.Int, bool) {
	if tx.ChainID != "" {
		id, ok := hexQuantity(tx.ChainID)
		return id, ok
	}
	v, ok := hexQuantity(tx.V)
	if !ok || v.Cmp(v35) < 0 {
		return nil, false
	}
	id := new(big.Int).Sub(v, v35)
	return id.Rsh(id, 1), true
}

// signingHashAccessList hashes 0x01 || RLP(chainId, nonce, gasPrice,
// gasLimit, to, value, data, accessList).
func signingHashAccessList(tx *rpcTransaction) []byte {
	chainID, ok0 := hexQuantity(tx.ChainID)
	nonce, ok1 := hexQuantity(tx.Nonce)
	gasPrice, ok2 := hexQuantity(tx.GasPrice)
	gas, ok3 := hexQuantity(tx.Gas)
	value, ok4 := hexQuantity(tx.Value)
	to, ok5 := hexBytes(tx.To)
	data, ok6 := hexBytes(tx.Input)
	al, ok7 := accessListItems(tx.AccessList)
	if !ok0 || !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 || !ok7 {
		return nil
	}
	items := []rlpItem{chainID, nonce, gasPrice, gas, to, value, data, al}
	return keccak256([]byte{0x01}, rlpEncode(items))
}

// signingHashDynamicFee hashes 0x02 || RLP(chainId, nonce,
// maxPriorityFee, maxFee, gasLimit, to, value, data, accessList).
func signingHashDynamicFee(tx *rpcTransaction) []byte {
	chainID, ok0 := hexQuantity(tx.ChainID)
	nonce, ok1 := hexQuantity(tx.Nonce)
	tip, ok2 := hexQuantity(tx.MaxPriorityFeePerGas)
	feeCap, ok3 := hexQuantity(tx.MaxFeePerGas)
	gas, ok4 := hexQuantity(tx.Gas)
	value, ok5 := hexQuantity(tx.Value)
	to, ok6 := hexBytes(tx.To)
	data, ok7 := hexBytes(tx.Input)
	al, ok8 := accessListItems(tx.AccessList)
	if !ok0 || !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 || !ok7 || !ok8 {
		return nil
	}
	items := []rlpItem{chainID, nonce, tip, feeCap, gas, to, value, data, al}
	return keccak256([]byte{0x02}, rlpEncode(items))
}

// accessListItems lowers the JSON access list into RLP shape:
// (20-byte address, list of 32-byte storage keys) per entry.
func accessListItems(entries []accessListEntry) ([]rlpItem, bool) {
	items := make([]rlpItem, 0, len(entries))
	for _, e := range entries {
		addr, ok := hexFixed(e.Address, 20)
		if !ok {
			return nil, false
		}
		storageKeys := make([]rlpItem, 0, len(e.StorageKeys))
		for _, k := range e.StorageKeys {
			kb, ok := hexFixed(k, 32)
			if !ok {
				return nil, false
			}
			storageKeys = append(storageKeys, kb)
		}
		items = append(items, []rlpItem{addr, storageKeys})
	}
	return items, true
}

// recoveryID prefers the explicit parity bit and otherwise normalizes
// v across the EIP-155 and pre-155 forms into 27/28.
func recoveryID(tx *rpcTransaction) (byte, bool) {
	if tx.YParity != "" {
		p, ok := hexQuantity(tx.YParity)
		if !ok {
			return 0, false
		}
		return byte(27 + p.Bit(0)), true
	}
	if tx.V == "" {
		return 0, false
	}
	v, ok := hexQuantity(tx.V)
	if !ok {
		return 0, false
	}
	switch {
	case v.Cmp(v35) >= 0:
		m := new(big.Int).Sub(v, v35)
		return byte(27 + m.Bit(0)), true
	case v.Int64() >= 27:
		return byte(v.Int64()), true
	default:
		return byte(27 + v.Bit(0)), true
	}
}

// hexQuantity parses a 0x-prefixed quantity. Empty strings fail;
// callers decide whether an absent field is tolerable.
func hexQuantity(s string) (*big.Int, bool) {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return nil, false
	}
	v, ok := new(big.Int).SetString(s, 16)
	return v, ok
}

// hexBytes parses 0x-prefixed data. "" and "0x" are the empty string,
// which is how an absent `to` encodes.
func hexBytes(s string) ([]byte, bool) {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return []byte{}, true
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, false
	}
	return b, true
}

// hexFixed parses data that must be exactly n bytes long.
func hexFixed(s string, n int) ([]byte, bool) {
	b, ok := hexBytes(s)
	if !ok || len(b) != n {
		return nil, false
	}
	return b, true
}

// hexWord parses r or s into a left-padded 32-byte word.
func hexWord(s string) ([32]byte, bool) {
	var word [32]byte
	v, ok := hexQuantity(s)
	if !ok || v.Sign() < 0 || v.BitLen() > 256 {
		return word, false
	}
	v.FillBytes(word[:])
	return word, true
}
