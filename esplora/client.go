package esplora

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/go-socks/socks"
	"github.com/lightningnetwork/lnd/fn/v2"
	"golang.org/x/time/rate"
)

const (
	// DefaultMaxResponseSize caps the number of bytes read from a single
	// response body.
	DefaultMaxResponseSize = 4 << 20

	// defaultRequestTimeout is used when the config doesn't set one.
	defaultRequestTimeout = 30 * time.Second

	// retryBackoff is the wait before the first retry. Each further retry
	// waits one more multiple of it.
	retryBackoff = 100 * time.Millisecond
)

var (
	// ErrClientShutdown is returned when the client has been shut down.
	ErrClientShutdown = errors.New("esplora client has been shut down")

	// ErrNotFound is returned when the API answers with HTTP 404.
	ErrNotFound = errors.New("not found")

	// ErrTxNotFound is returned when a transaction cannot be found.
	ErrTxNotFound = errors.New("transaction not found")
)

// APIError is returned for any non-200 answer other than 404.
type APIError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode,
		strings.TrimSpace(e.Body))
}

// ClientConfig holds the configuration for the Esplora client.
type ClientConfig struct {
	// URL is the base URL of the Esplora API (e.g., http://localhost:3002).
	URL string

	// RequestTimeout is the timeout for individual HTTP requests.
	RequestTimeout time.Duration

	// MaxRetries is the maximum number of retries for requests that fail
	// at the transport level. HTTP error statuses are never retried.
	MaxRetries int

	// RateLimit is the maximum number of requests per second. Zero means
	// unlimited.
	RateLimit float64

	// Proxy is an optional SOCKS5 proxy address.
	Proxy string

	// TorIsolation requests a separate Tor circuit per connection.
	TorIsolation bool

	// MaxResponseSize overrides DefaultMaxResponseSize when positive.
	MaxResponseSize int64
}

// Client is an HTTP client for the Esplora REST API.
type Client struct {
	cfg *ClientConfig

	baseURL string

	httpClient *http.Client

	limiter *rate.Limiter

	quitOnce sync.Once
	quit     chan struct{}
}

// NewClient creates a new Esplora client with the given configuration.
func NewClient(cfg *ClientConfig) *Client {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.MaxResponseSize <= 0 {
		cfg.MaxResponseSize = DefaultMaxResponseSize
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		cfg:        cfg,
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		httpClient: newHTTPClient(cfg),
		limiter:    limiter,
		quit:       make(chan struct{}),
	}
}

// newHTTPClient returns the HTTP client used for all requests. When a proxy
// is configured every connection is dialed through it.
func newHTTPClient(cfg *ClientConfig) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.Proxy != "" {
		proxy := &socks.Proxy{
			Addr:         cfg.Proxy,
			TorIsolation: cfg.TorIsolation,
		}

		transport.Proxy = nil
		transport.DialContext = func(_ context.Context, network,
			addr string) (net.Conn, error) {

			return proxy.Dial(network, addr)
		}
	}

	return &http.Client{
		Timeout:   cfg.RequestTimeout,
		Transport: transport,
	}
}

// URL returns the base URL requests are sent to.
func (c *Client) URL() string {
	return c.baseURL
}

// Stop shuts down the client. Requests issued afterwards fail with
// ErrClientShutdown.
func (c *Client) Stop() error {
	c.quitOnce.Do(func() {
		log.Info("Stopping Esplora client")
		close(c.quit)
	})

	return nil
}

// doRequest performs an HTTP request with retries.
func (c *Client) doRequest(ctx context.Context, method, path string,
	body []byte) (*http.Response, error) {

	url := c.baseURL + path

	var lastErr error
	for i := 0; i <= c.cfg.MaxRetries; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.quit:
			return nil, ErrClientShutdown
		default:
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		if body != nil {
			req.Header.Set("Content-Type", "text/plain")
		}

		log.Tracef("%s %s", method, url)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			log.Debugf("Request %s %s failed (attempt %d): %v",
				method, path, i+1, err)

			if i == c.cfg.MaxRetries {
				break
			}

			backoff := time.Duration(i+1) * retryBackoff
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-c.quit:
				return nil, ErrClientShutdown
			}
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w",
		c.cfg.MaxRetries+1, lastErr)
}

// readBody reads a size limited response body and maps HTTP error statuses.
func (c *Client) readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil

	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound,
			strings.TrimSpace(string(body)))

	default:
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}
}

// doGet performs a GET request and returns the response body.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	return c.readBody(resp)
}

// getJSON performs a GET request and decodes the JSON response into v.
func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	body, err := c.doGet(ctx, path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetTipHeight returns the current blockchain tip height.
func (c *Client) GetTipHeight(ctx context.Context) (int64, error) {
	body, err := c.doGet(ctx, "/blocks/tip/height")
	if err != nil {
		return 0, err
	}

	height, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse height: %w", err)
	}

	return height, nil
}

// GetBlocks returns the ten most recent blocks, or the ten blocks ending at
// the given height if start is set. Blocks are ordered newest first.
func (c *Client) GetBlocks(ctx context.Context,
	start fn.Option[int64]) ([]*BlockInfo, error) {

	path := fn.MapOptionZ(start, func(height int64) string {
		return fmt.Sprintf("/blocks/%d", height)
	})
	if path == "" {
		path = "/blocks"
	}

	var blocks []*BlockInfo
	if err := c.getJSON(ctx, path, &blocks); err != nil {
		return nil, err
	}

	return blocks, nil
}

// GetTransaction fetches transaction information by txid.
func (c *Client) GetTransaction(ctx context.Context,
	txid string) (*TxInfo, error) {

	var info TxInfo
	err := c.getJSON(ctx, "/tx/"+txid, &info)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTxNotFound, txid)
	}
	if err != nil {
		return nil, err
	}

	return &info, nil
}

// GetRawTransaction fetches the raw transaction hex by txid.
func (c *Client) GetRawTransaction(ctx context.Context,
	txid string) (string, error) {

	body, err := c.doGet(ctx, "/tx/"+txid+"/hex")
	if errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("%w: %s", ErrTxNotFound, txid)
	}
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(body)), nil
}

// GetRawTransactionMsgTx fetches and deserializes a transaction.
func (c *Client) GetRawTransactionMsgTx(ctx context.Context,
	txid string) (*wire.MsgTx, error) {

	txHex, err := c.GetRawTransaction(ctx, txid)
	if err != nil {
		return nil, err
	}

	txBytes, err := hex.DecodeString(txHex)
	if err != nil {
		return nil, fmt.Errorf("failed to decode tx hex: %w", err)
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(txBytes)); err != nil {
		return nil, fmt.Errorf("failed to deserialize tx: %w", err)
	}

	return tx, nil
}

// GetAddressStats fetches the funded/spent summary of an address.
func (c *Client) GetAddressStats(ctx context.Context,
	address string) (*AddressStats, error) {

	var stats AddressStats
	if err := c.getJSON(ctx, "/address/"+address, &stats); err != nil {
		return nil, err
	}

	return &stats, nil
}

// GetAddressTxs fetches transactions for an address: up to 50 mempool
// transactions followed by the 25 newest confirmed ones.
func (c *Client) GetAddressTxs(ctx context.Context,
	address string) ([]*TxInfo, error) {

	var txs []*TxInfo
	if err := c.getJSON(ctx, "/address/"+address+"/txs", &txs); err != nil {
		return nil, err
	}

	return txs, nil
}

// GetAddressTxsChain fetches the next page of 25 confirmed transactions
// older than lastSeenTxid.
func (c *Client) GetAddressTxsChain(ctx context.Context, address,
	lastSeenTxid string) ([]*TxInfo, error) {

	path := "/address/" + address + "/txs/chain"
	if lastSeenTxid != "" {
		path += "/" + lastSeenTxid
	}

	var txs []*TxInfo
	if err := c.getJSON(ctx, path, &txs); err != nil {
		return nil, err
	}

	return txs, nil
}

// GetAddressUTXOs fetches unspent outputs for an address.
func (c *Client) GetAddressUTXOs(ctx context.Context,
	address string) ([]*UTXO, error) {

	var utxos []*UTXO
	if err := c.getJSON(ctx, "/address/"+address+"/utxo", &utxos); err != nil {
		return nil, err
	}

	return utxos, nil
}

// GetFeeEstimates fetches fee estimates for various confirmation targets.
func (c *Client) GetFeeEstimates(ctx context.Context) (FeeEstimates, error) {
	var estimates FeeEstimates
	if err := c.getJSON(ctx, "/fee-estimates", &estimates); err != nil {
		return nil, err
	}

	return estimates, nil
}

// BroadcastTransaction broadcasts a raw transaction to the network.
// Returns the txid on success.
func (c *Client) BroadcastTransaction(ctx context.Context,
	txHex string) (string, error) {

	resp, err := c.doRequest(
		ctx, http.MethodPost, "/tx", []byte(txHex),
	)
	if err != nil {
		return "", err
	}

	body, err := c.readBody(resp)
	if err != nil {
		return "", fmt.Errorf("broadcast failed: %w", err)
	}

	txid := strings.TrimSpace(string(body))
	log.Debugf("Broadcast transaction %s", txid)

	return txid, nil
}

// BroadcastTx broadcasts a wire.MsgTx to the network.
func (c *Client) BroadcastTx(ctx context.Context,
	tx *wire.MsgTx) (*chainhash.Hash, error) {

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize tx: %w", err)
	}

	txid, err := c.BroadcastTransaction(ctx, hex.EncodeToString(buf.Bytes()))
	if err != nil {
		return nil, err
	}

	return chainhash.NewHashFromStr(txid)
}
