package bitcoin

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/davecgh/go-spew/spew"

	"eppie/engine/library"
)

// Shapes of the esplora transaction-detail response, trimmed to the
// fields spend-history scanning needs.
type historyTx struct {
	TxID string      `json:"txid"`
	Vin  []historyIn `json:"vin"`
}

type historyIn struct {
	Prevout   *historyPrevout `json:"prevout"`
	ScriptSig string          `json:"scriptsig"`
	Witness   []string        `json:"witness"`
}

type historyPrevout struct {
	Address string `json:"scriptpubkey_address"`
}

func (c *Client) addressTxs(ctx context.Context, address string) ([]historyTx, error) {
	body, err := c.get(ctx, c.ExplorerURL+"/address/"+url.PathEscape(address)+"/txs")
	if err != nil {
		return nil, err
	}
	var txs []historyTx
	if err := json.Unmarshal(body, &txs); err != nil {
		library.LogCLI(fmt.Sprintf("malformed tx history: %s\n%s", err, spew.Sdump(body)), 3)
		return nil, err
	}
	return txs, nil
}

// RetrievePublicKey scans the address's transaction history for a
// spend and lifts the compressed public key out of the spending
// input. Network trouble, malformed responses, cancellation and a
// never-spent address all come back as nil; only a blank or
// undecodable address is an error.
func (c *Client) RetrievePublicKey(ctx context.Context, address string) (*btcec.PublicKey, error) {
	if strings.TrimSpace(address) == "" {
		return nil, fmt.Errorf("address must not be blank")
	}
	if _, err := btcutil.DecodeAddress(address, c.Params); err != nil {
		return nil, fmt.Errorf("invalid address %s: %w", address, err)
	}
	txs, err := c.addressTxs(ctx, address)
	if err != nil {
		library.LogCLI(fmt.Sprintf("history scan for %s: %s", address, err), 3)
		return nil, nil
	}
	for _, tx := range txs {
		for _, vin := range tx.Vin {
			if vin.Prevout == nil || vin.Prevout.Address != address {
				continue
			}
			if pub := publicKeyFromInput(vin); pub != nil {
				return pub, nil
			}
		}
	}
	return nil, nil
}

// FetchSpentTransaction returns the id of the first transaction that
// spends from the address, or "" when there is none or the response
// was unusable. Cancellation is propagated here: callers poll this
// for activation status and must be able to tell "not yet spent" from
// "gave up waiting".
func (c *Client) FetchSpentTransaction(ctx context.Context, address string) (library.Sha256, error) {
	if strings.TrimSpace(address) == "" {
		return "", fmt.Errorf("address must not be blank")
	}
	txs, err := c.addressTxs(ctx, address)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		library.LogCLI(fmt.Sprintf("spent-tx lookup for %s: %s", address, err), 3)
		return "", nil
	}
	for _, tx := range txs {
		for _, vin := range tx.Vin {
			if vin.Prevout != nil && vin.Prevout.Address == address {
				return tx.TxID, nil
			}
		}
	}
	return "", nil
}

// publicKeyFromInput extracts the compressed key from a P2PKH
// scriptsig (the trailing 33-byte push) or a P2WPKH witness (the
// second item). Anything that does not parse as a point is ignored.
func publicKeyFromInput(vin historyIn) *btcec.PublicKey {
	if len(vin.Witness) == 2 {
		if raw, err := hex.DecodeString(vin.Witness[1]); err == nil && len(raw) == 33 {
			if pub, err := btcec.ParsePubKey(raw); err == nil {
				return pub
			}
		}
	}
	raw, err := hex.DecodeString(vin.ScriptSig)
	if err != nil || len(raw) < 34 {
		return nil
	}
	if raw[len(raw)-34] != 33 {
		return nil
	}
	tail := raw[len(raw)-33:]
	if tail[0] != 0x02 && tail[0] != 0x03 {
		return nil
	}
	pub, err := btcec.ParsePubKey(tail)
	if err != nil {
		return nil
	}
	return pub
}
