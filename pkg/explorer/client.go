// Package explorer is a client for the Etherscan-compatible REST API exposed
// by the network's block explorer.
package explorer

import (
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

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

const DefaultTimeout = 30 * time.Second

// ErrNotFound is returned by single-object lookups when the explorer has no
// record
var ErrNotFound = errors.New("explorer: not found")

// APIError is a status "0" response that is not an empty result
type APIError struct {
	Message string
	Result  string
}

func (e *APIError) Error() string {
	if e.Result != "" {
		return fmt.Sprintf("explorer: %s: %s", e.Message, e.Result)
	}
	return "explorer: " + e.Message
}

// envelope is the {status, message, result} wrapper of every response
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// Client queries one explorer API base URL
type Client struct {
	baseURL string
	http    *http.Client
	log     logrus.FieldLogger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TokenHolders lists holders of contract. page and offset follow the API's
// 1-based paging; zero values are omitted.
func (c *Client) TokenHolders(ctx context.Context, contract common.Address, page, offset int) ([]Holder, error) {
	q := url.Values{}
	q.Set("module", "token")
	q.Set("action", "getTokenHolders")
	q.Set("contractaddress", contract.Hex())
	setPaging(q, page, offset)

	var holders []Holder
	if _, err := c.get(ctx, q, &holders); err != nil {
		return nil, err
	}
	return holders, nil
}

// TokenTransfers lists ERC-20 transfers of address, optionally limited to
// one token contract
func (c *Client) TokenTransfers(ctx context.Context, address common.Address, contract *common.Address) ([]TokenTransfer, error) {
	q := url.Values{}
	q.Set("module", "account")
	q.Set("action", "tokentx")
	q.Set("address", address.Hex())
	if contract != nil {
		q.Set("contractaddress", contract.Hex())
	}
	q.Set("sort", "desc")

	var transfers []TokenTransfer
	if _, err := c.get(ctx, q, &transfers); err != nil {
		return nil, err
	}
	return transfers, nil
}

// Token returns the explorer's metadata for contract
func (c *Client) Token(ctx context.Context, contract common.Address) (*TokenInfo, error) {
	q := url.Values{}
	q.Set("module", "token")
	q.Set("action", "getToken")
	q.Set("contractaddress", contract.Hex())

	var info TokenInfo
	found, err := c.get(ctx, q, &info)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("token %s: %w", contract.Hex(), ErrNotFound)
	}
	return &info, nil
}

// Transactions lists the normal transactions of address, newest first
func (c *Client) Transactions(ctx context.Context, address common.Address) ([]Transaction, error) {
	q := url.Values{}
	q.Set("module", "account")
	q.Set("action", "txlist")
	q.Set("address", address.Hex())
	q.Set("sort", "desc")

	var txs []Transaction
	if _, err := c.get(ctx, q, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

func setPaging(q url.Values, page, offset int) {
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
}

// get decodes the result into out. found is false for an empty result.
func (c *Client) get(ctx context.Context, q url.Values, out interface{}) (bool, error) {
	uri := fmt.Sprintf("%s?%s", c.baseURL, q.Encode())
	start := time.Now()
	logger := c.log.WithFields(logrus.Fields{"module": q.Get("module"), "action": q.Get("action")})
	defer func() {
		logger.WithField("duration", time.Since(start)).Debug("explorer request")
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("explorer request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read explorer response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("explorer returned HTTP %d", resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return false, fmt.Errorf("failed to decode explorer response: %w", err)
	}

	if env.Status != "1" {
		if isEmptyResult(env.Message) {
			return false, nil
		}
		apiErr := &APIError{Message: env.Message}
		// error details usually come back as a string result
		_ = json.Unmarshal(env.Result, &apiErr.Result)
		return false, apiErr
	}

	if len(env.Result) == 0 || string(env.Result) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return false, fmt.Errorf("failed to decode explorer result: %w", err)
	}
	return true, nil
}

// isEmptyResult matches messages like "No transactions found"
func isEmptyResult(message string) bool {
	m := strings.ToLower(message)
	return strings.HasPrefix(m, "no ") && strings.HasSuffix(m, "found")
}
