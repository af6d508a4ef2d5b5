package bitcoin

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"eppie/engine/library"
)

// BuildSpendAllTx drains the address back to itself: every known utxo
// becomes an input and a single output returns the sum minus the flat
// fee. An unusable WIF, a failed utxo fetch, or a remainder that
// cannot cover the fee all yield "" - the caller decides whether that
// is fatal.
func (c *Client) BuildSpendAllTx(ctx context.Context, address, wifStr string) string {
	wif, err := btcutil.DecodeWIF(wifStr)
	if err != nil {
		library.LogCLI(fmt.Sprintf("unusable wif for %s: %s", address, err), 3)
		return ""
	}
	utxos := ParseUtxoList(c.FetchUtxoJSON(ctx, address))
	if utxos == nil {
		return ""
	}
	coins, err := CoinsFromUtxos(utxos, address, c.Params)
	if err != nil || len(coins) == 0 {
		return ""
	}
	var total int64
	for _, coin := range coins {
		total += coin.TxOut.Value
	}
	amount := total - c.FeeSatoshis
	if amount <= 0 {
		library.LogCLI(fmt.Sprintf("%s holds %d satoshis, not enough to cover the %d fee", address, total, c.FeeSatoshis), 3)
		return ""
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	for i := range coins {
		tx.AddTxIn(wire.NewTxIn(&coins[i].OutPoint, nil, nil))
	}
	tx.AddTxOut(wire.NewTxOut(amount, coins[0].TxOut.PkScript))
	for i := range coins {
		sigScript, err := txscript.SignatureScript(tx, i, coins[i].TxOut.PkScript, txscript.SigHashAll, wif.PrivKey, true)
		if err != nil {
			library.LogCLI(fmt.Sprintf("signing input %d: %s", i, err), 2)
			return ""
		}
		tx.TxIn[i].SignatureScript = sigScript
	}

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		library.LogCLI(err.Error(), 2)
		return ""
	}
	return hex.EncodeToString(buf.Bytes())
}

// Broadcast submits raw transaction hex and returns the txid the
// explorer answered with, trimmed. HTTP failure and cancellation
// yield ""; a blank payload is a programmer error.
func (c *Client) Broadcast(ctx context.Context, txHex string) (library.Sha256, error) {
	if strings.TrimSpace(txHex) == "" {
		return "", fmt.Errorf("txHex must not be blank")
	}
	if c.HTTP == nil {
		return "", fmt.Errorf("http client must not be nil")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ExplorerURL+"/tx", strings.NewReader(txHex))
	if err != nil {
		return "", err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		library.LogCLI(fmt.Sprintf("broadcast: %s", err), 3)
		return "", nil
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		library.LogCLI(fmt.Sprintf("broadcast: %s", err), 3)
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		library.LogCLI(fmt.Sprintf("broadcast rejected with code %d: %s", resp.StatusCode, body), 2)
		return "", nil
	}
	return strings.TrimSpace(string(body)), nil
}

// Activate derives the address at (account, index), drains it to
// itself and broadcasts the result. Unlike the helpers it composes,
// every failure here is fatal: an address that cannot fund its own
// activation is an error the caller must see.
func (c *Client) Activate(ctx context.Context, master *hdkeychain.ExtendedKey, account, index int) (library.Sha256, error) {
	address, err := c.DeriveAddress(master, account, index)
	if err != nil {
		return "", err
	}
	wif, err := c.DeriveSecretKeyWIF(master, account, index)
	if err != nil {
		return "", err
	}
	txHex := c.BuildSpendAllTx(ctx, address, wif)
	if txHex == "" {
		return "", fmt.Errorf("could not build activation transaction for %s: insufficient funds", address)
	}
	txid, err := c.Broadcast(ctx, txHex)
	if err != nil {
		return "", err
	}
	if txid == "" {
		return "", fmt.Errorf("broadcast of activation transaction for %s failed", address)
	}
	return txid, nil
}
