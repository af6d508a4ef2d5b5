package bitcoin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/davecgh/go-spew/spew"

	"eppie/engine/library"
)

// Utxo is one spendable output as reported by the explorer.
type Utxo struct {
	TxID  string
	Vout  uint32
	Value int64
}

// Coin is a spendable input paired with the output it redeems.
type Coin struct {
	OutPoint wire.OutPoint
	TxOut    wire.TxOut
}

// FetchUtxoJSON returns the raw explorer response for the address's
// unspent outputs, or nil when the call fails. Explorer reads degrade,
// they never abort the caller.
func (c *Client) FetchUtxoJSON(ctx context.Context, address string) []byte {
	body, err := c.get(ctx, c.ExplorerURL+"/address/"+url.PathEscape(address)+"/utxo")
	if err != nil {
		library.LogCLI(fmt.Sprintf("utxo fetch for %s: %s", address, err), 3)
		return nil
	}
	return body
}

// ParseUtxoList tolerantly decodes the explorer's utxo array. Entries
// with an empty txid or a negative vout or value are dropped. JSON
// that does not decode at all yields nil, which callers must keep
// distinct from an address that simply has no unspent outputs.
func ParseUtxoList(data []byte) []Utxo {
	if len(data) == 0 {
		return nil
	}
	var raw []struct {
		TxID  string `json:"txid"`
		Vout  int64  `json:"vout"`
		Value int64  `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		library.LogCLI(fmt.Sprintf("malformed utxo response: %s\n%s", err, spew.Sdump(data)), 3)
		return nil
	}
	utxos := make([]Utxo, 0, len(raw))
	for _, u := range raw {
		if u.TxID == "" || u.Vout < 0 || u.Value < 0 {
			continue
		}
		utxos = append(utxos, Utxo{TxID: u.TxID, Vout: uint32(u.Vout), Value: u.Value})
	}
	return utxos
}

// CoinsFromUtxos binds utxos to the script paying the given address.
// Utxos whose txid is not a 64-char hex transaction hash are skipped;
// satoshi values ride through as int64 untouched.
func CoinsFromUtxos(utxos []Utxo, address string, params *chaincfg.Params) ([]Coin, error) {
	addr, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return nil, fmt.Errorf("decoding address %s: %w", address, err)
	}
	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, err
	}
	coins := make([]Coin, 0, len(utxos))
	for _, u := range utxos {
		if len(u.TxID) != chainhash.MaxHashStringSize {
			continue
		}
		hash, err := chainhash.NewHashFromStr(u.TxID)
		if err != nil {
			continue
		}
		coins = append(coins, Coin{
			OutPoint: *wire.NewOutPoint(hash, u.Vout),
			TxOut:    *wire.NewTxOut(u.Value, script),
		})
	}
	return coins, nil
}
