package bitcoin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/spf13/viper"
)

// DefaultFeeSatoshis is the flat fee subtracted from a spend-all
// transaction when no other fee is configured.
const DefaultFeeSatoshis int64 = 1000

// Client talks to an esplora-compatible block explorer for one Bitcoin
// network. The HTTP client is injected by the composition root; pass
// nil to let the Client own a default one.
type Client struct {
	Params      *chaincfg.Params
	ExplorerURL string
	FeeSatoshis int64
	HTTP        *http.Client
}

func NewClient(params *chaincfg.Params, explorerURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		Params:      params,
		ExplorerURL: strings.TrimRight(explorerURL, "/"),
		FeeSatoshis: DefaultFeeSatoshis,
		HTTP:        httpClient,
	}
}

// FromConfig builds a client from the viper defaults set up by
// engine/actors.
func FromConfig(conf *viper.Viper, params *chaincfg.Params, httpClient *http.Client) *Client {
	c := NewClient(params, conf.GetString("blockExplorer"), httpClient)
	if fee := conf.GetInt64("bitcoinFeeSatoshis"); fee > 0 {
		c.FeeSatoshis = fee
	}
	return c
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Accept", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http response error code %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
