package bitcoin

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	bip39 "github.com/tyler-smith/go-bip39"
)

const (
	purposeBIP44    = 44
	coinTypeBitcoin = 0
)

// MasterKeyFromMnemonic restores the BIP32 master key from seed words.
func MasterKeyFromMnemonic(mnemonic, passphrase string, params *chaincfg.Params) (*hdkeychain.ExtendedKey, error) {
	if strings.TrimSpace(mnemonic) == "" {
		return nil, fmt.Errorf("mnemonic must not be blank")
	}
	seed := bip39.NewSeed(mnemonic, passphrase)
	return hdkeychain.NewMaster(seed, params)
}

// deriveBIP44 walks m/44'/0'/{account}'/0/{index} from the master key.
func deriveBIP44(master *hdkeychain.ExtendedKey, account, index int) (*hdkeychain.ExtendedKey, error) {
	if master == nil {
		return nil, fmt.Errorf("master key must not be nil")
	}
	if account < 0 || index < 0 {
		return nil, fmt.Errorf("account and index must not be negative")
	}
	if uint32(account) >= hdkeychain.HardenedKeyStart || uint32(index) >= hdkeychain.HardenedKeyStart {
		return nil, fmt.Errorf("account or index out of range")
	}
	path := []uint32{
		hdkeychain.HardenedKeyStart + purposeBIP44,
		hdkeychain.HardenedKeyStart + coinTypeBitcoin,
		hdkeychain.HardenedKeyStart + uint32(account),
		0,
		uint32(index),
	}
	key := master
	var err error
	for _, step := range path {
		if key, err = key.Derive(step); err != nil {
			return nil, fmt.Errorf("deriving child %d: %w", step, err)
		}
	}
	return key, nil
}

// DeriveAddress returns the P2PKH address at m/44'/0'/{account}'/0/{index}.
func (c *Client) DeriveAddress(master *hdkeychain.ExtendedKey, account, index int) (string, error) {
	key, err := deriveBIP44(master, account, index)
	if err != nil {
		return "", err
	}
	pub, err := key.ECPubKey()
	if err != nil {
		return "", err
	}
	addr, err := btcutil.NewAddressPubKeyHash(btcutil.Hash160(pub.SerializeCompressed()), c.Params)
	if err != nil {
		return "", err
	}
	return addr.EncodeAddress(), nil
}

// DeriveSecretKeyWIF returns the compressed-key WIF for the same path.
func (c *Client) DeriveSecretKeyWIF(master *hdkeychain.ExtendedKey, account, index int) (string, error) {
	key, err := deriveBIP44(master, account, index)
	if err != nil {
		return "", err
	}
	priv, err := key.ECPrivKey()
	if err != nil {
		return "", err
	}
	wif, err := btcutil.NewWIF(priv, c.Params, true)
	if err != nil {
		return "", err
	}
	return wif.String(), nil
}
