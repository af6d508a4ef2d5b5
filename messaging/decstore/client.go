package decstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/viper"

	"eppie/engine/library"
	"eppie/protocol/claim"
)

// Client is the wire client for the decentralized blob and name
// store. Unlike the chain explorer clients, transport failures here
// are returned to the caller: this is the trust-anchor write path and
// must never fail silently.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: httpClient}
}

// FromConfig builds a client from the viper defaults set up by
// engine/actors.
func FromConfig(conf *viper.Viper, httpClient *http.Client) *Client {
	return NewClient(conf.GetString("decStorage"), httpClient)
}

// claimRequest mirrors the store's /claim JSON body.
type claimRequest struct {
	NameCanonical string `json:"NameCanonical"`
	PublicKey     string `json:"PublicKey"`
	Signature     string `json:"Signature"`
}

// ClaimName submits a claim-v1 binding. The store arbitrates
// first-come-first-served: the response is the key the name is bound
// to after the call, which may belong to an earlier claimant, or the
// empty string when this exact binding already existed and the call
// was a no-op duplicate.
func (c *Client) ClaimName(ctx context.Context, name, publicKey, signature string) (string, error) {
	canonical := claim.CanonicalizeName(name)
	if canonical == "" {
		return "", fmt.Errorf("name must not be blank")
	}
	if strings.TrimSpace(publicKey) == "" {
		return "", fmt.Errorf("publicKey must not be blank")
	}
	body, err := json.Marshal(claimRequest{
		NameCanonical: canonical,
		PublicKey:     publicKey,
		Signature:     signature,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/claim", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	reply, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("claiming %s: %w", canonical, err)
	}
	return strings.Trim(strings.TrimSpace(string(reply)), `"`), nil
}

// GetAddressByName looks a registered name up. An unregistered name
// is "", nil; transport failures are errors.
func (c *Client) GetAddressByName(ctx context.Context, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("name must not be blank")
	}
	q := url.Values{}
	q.Set("name", name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/address?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http response error code %d", resp.StatusCode)
	}
	return strings.Trim(strings.TrimSpace(string(body)), `"`), nil
}

// Put uploads a blob as multipart form data and returns the content
// address the store assigned it.
func (c *Client) Put(ctx context.Context, data []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "data")
	if err != nil {
		return "", err
	}
	if _, err = part.Write(data); err != nil {
		return "", err
	}
	if err = w.Close(); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/put", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	library.LogCLI(fmt.Sprintf("put %d bytes, sha256 %s", len(data), library.Sha256Sum(data)), 3)
	reply, err := c.do(req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(reply)), nil
}

// Get downloads a blob by its content address.
func (c *Client) Get(ctx context.Context, hash string) ([]byte, error) {
	if strings.TrimSpace(hash) == "" {
		return nil, fmt.Errorf("hash must not be blank")
	}
	q := url.Values{}
	q.Set("hash", hash)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/get?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// List returns the content addresses stored for an address.
func (c *Client) List(ctx context.Context, address string) ([]string, error) {
	if strings.TrimSpace(address) == "" {
		return nil, fmt.Errorf("address must not be blank")
	}
	q := url.Values{}
	q.Set("address", address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/list?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var hashes []string
	if err := json.Unmarshal(body, &hashes); err != nil {
		return nil, fmt.Errorf("decoding list response: %w", err)
	}
	return hashes, nil
}

// Send delivers a blob to another address's inbox.
func (c *Client) Send(ctx context.Context, address string, data []byte) error {
	if strings.TrimSpace(address) == "" {
		return fmt.Errorf("address must not be blank")
	}
	q := url.Values{}
	q.Set("address", address)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/send?"+q.Encode(), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	_, err = c.do(req)
	return err
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http response error code %d", resp.StatusCode)
	}
	return body, nil
}
