package ethereum

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/exp/slices"

	"eppie/engine/helpers"
	"eppie/engine/library"
)

const (
	pageSize = 100
	maxPages = 5
)

// ExplorerClient drives an etherscan-compatible HTTP API: the account
// tx-list endpoint for discovery and the JSON-RPC proxy for single
// transactions. Pass a nil http client to let it own a default one.
type ExplorerClient struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	Retry   helpers.RetryPolicy
}

func NewExplorerClient(baseURL, apiKey string, httpClient *http.Client) *ExplorerClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &ExplorerClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    httpClient,
		Retry: helpers.RetryPolicy{
			MaxAttempts: 3,
			BaseDelay:   500 * time.Millisecond,
			MaxDelay:    4 * time.Second,
			Retryable: func(err error) bool {
				var rl *RateLimitError
				return errors.As(err, &rl)
			},
		},
	}
}

// FromConfig builds a client from the viper defaults set up by
// engine/actors.
func FromConfig(conf *viper.Viper, httpClient *http.Client) *ExplorerClient {
	c := NewExplorerClient(conf.GetString("ethereumExplorer"), conf.GetString("ethereumApiKey"), httpClient)
	if n := conf.GetInt("explorerRetryAttempts"); n > 0 {
		c.Retry.MaxAttempts = n
	}
	if ms := conf.GetInt("explorerBackoffMs"); ms > 0 {
		c.Retry.BaseDelay = time.Duration(ms) * time.Millisecond
	}
	if ms := conf.GetInt("explorerBackoffCapMs"); ms > 0 {
		c.Retry.MaxDelay = time.Duration(ms) * time.Millisecond
	}
	return c
}

type txListEntry struct {
	Hash string `json:"hash"`
	From string `json:"from"`
}

// GetAddressInfo pages the account tx list for transactions sent from
// the address, newest first. It stops at the first page that yields a
// match and never walks more than five pages of one hundred entries.
// Failures of any kind leave the result as collected so far; only
// rate limiting is retried, through the bounded policy.
func (c *ExplorerClient) GetAddressInfo(ctx context.Context, address string) AddressInfo {
	info := AddressInfo{Address: address}
	for page := 1; page <= maxPages; page++ {
		var txs []txListEntry
		err := c.Retry.Do(ctx, func() error {
			var ferr error
			txs, ferr = c.fetchTxListPage(ctx, address, page)
			return ferr
		})
		if err != nil {
			library.LogCLI(fmt.Sprintf("tx list page %d for %s: %s", page, address, err), 3)
			return info
		}
		for _, tx := range txs {
			if tx.Hash == "" || !strings.EqualFold(tx.From, address) {
				continue
			}
			hash := tx.Hash
			dup := slices.IndexFunc(info.OutgoingTxHashes, func(h string) bool {
				return strings.EqualFold(h, hash)
			}) >= 0
			if dup {
				continue
			}
			info.OutgoingTxHashes = append(info.OutgoingTxHashes, hash)
		}
		if len(info.OutgoingTxHashes) > 0 || len(txs) < pageSize {
			break
		}
	}
	return info
}

func (c *ExplorerClient) fetchTxListPage(ctx context.Context, address string, page int) ([]txListEntry, error) {
	q := url.Values{}
	q.Set("module", "account")
	q.Set("action", "txlist")
	q.Set("address", address)
	q.Set("startblock", "0")
	q.Set("endblock", "99999999")
	q.Set("page", strconv.Itoa(page))
	q.Set("offset", strconv.Itoa(pageSize))
	q.Set("sort", "desc")
	body, status, err := c.get(ctx, q)
	if err != nil {
		return nil, err
	}
	if rateLimited(status, body) {
		return nil, &RateLimitError{Endpoint: "txlist"}
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("http response error code %d", status)
	}
	var reply struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Result  json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, err
	}
	var txs []txListEntry
	if err := json.Unmarshal(reply.Result, &txs); err != nil {
		// "No transactions found" arrives as a string result
		return nil, nil
	}
	return txs, nil
}

func (c *ExplorerClient) get(ctx context.Context, q url.Values) ([]byte, int, error) {
	if c.APIKey != "" {
		q.Set("apikey", c.APIKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Add("Accept", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

// rateLimited recognizes the two throttle shapes etherscan-style APIs
// answer with: a 429 status or a 200 whose body mentions the limit.
func rateLimited(status int, body []byte) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	return bytes.Contains(bytes.ToLower(body), []byte("rate limit"))
}
