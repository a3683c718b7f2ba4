// Package rest provides a client for the Fyers REST API.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	fyers "github.com/thetatiger/fyers-go"
	"github.com/thetatiger/fyers-go/internal/limiter"
)

const (
	// DefaultBaseURL is the Fyers REST API base URL
	DefaultBaseURL = "https://api.fyers.in"

	quotesPath    = "/data-rest/v2/quotes/"
	depthPath     = "/data-rest/v2/depth/"
	orderbookPath = "/api/v2/orders"
	positionsPath = "/api/v2/positions"
	tradebookPath = "/api/v2/tradebook"
)

// Stale-credential error codes returned by the API when the access token has
// expired or been invalidated
var staleTokenCodes = map[int]bool{
	-15: true,
	-16: true,
	-17: true,
}

// Client provides read access to the Fyers REST API
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	rateLimiter *limiter.HTTPRateLimiter
	logger      *zerolog.Logger
}

// NewClient creates a new REST API client. The access token is the composite
// "clientID:accessToken" credential sent in the Authorization header.
func NewClient(accessToken string, opts ...Option) (*Client, error) {
	if !strings.Contains(accessToken, ":") {
		return nil, fmt.Errorf("access token must be clientID:token: %w", fyers.ErrInvalidAccessToken)
	}

	cfg := &clientConfig{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Client{
		baseURL:     cfg.baseURL,
		accessToken: accessToken,
		httpClient:  cfg.httpClient,
		rateLimiter: cfg.rateLimiter,
		logger:      cfg.logger,
	}, nil
}

// doRequest performs a GET request with authentication headers and returns the
// raw response body. Non-2xx statuses and rate limit waits surface as errors.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx, path); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("api response")
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("request returned status %d: %w", resp.StatusCode, fyers.ErrStaleCredentials)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// apiError converts a non-ok response envelope into an error. Token-expiry
// codes additionally match fyers.ErrStaleCredentials via errors.Is.
func apiError(status string, code int, message string) error {
	apiErr := &APIError{Status: status, Code: code, Message: message}
	if staleTokenCodes[code] {
		return fmt.Errorf("%w: %w", fyers.ErrStaleCredentials, apiErr)
	}
	return apiErr
}

// Quotes retrieves full quotes for the given symbols (e.g. "NSE:SBIN-EQ").
// Symbols that fail individually are omitted from the result; the call errors
// only when the envelope itself is non-ok.
func (c *Client) Quotes(ctx context.Context, symbols ...string) (map[string]Quote, error) {
	query := url.Values{}
	query.Set("symbols", strings.Join(symbols, ","))

	respBody, err := c.doRequest(ctx, quotesPath, query)
	if err != nil {
		return nil, fmt.Errorf("get quotes failed: %w", err)
	}

	var result quotesResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse quotes response: %w", err)
	}
	if result.Status != statusOK {
		return nil, apiError(result.Status, result.Code, result.Message)
	}

	quotes := make(map[string]Quote, len(result.Data))
	for _, entry := range result.Data {
		if entry.Status != statusOK || entry.Quote == nil {
			if c.logger != nil {
				c.logger.Warn().Str("symbol", entry.Name).Msg("quote unavailable")
			}
			continue
		}
		quotes[entry.Name] = *entry.Quote
	}
	return quotes, nil
}

// Depth retrieves market depth for a single symbol
func (c *Client) Depth(ctx context.Context, symbol string) (*Depth, error) {
	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("ohlcv_flag", "1")

	respBody, err := c.doRequest(ctx, depthPath, query)
	if err != nil {
		return nil, fmt.Errorf("get depth failed: %w", err)
	}

	var result depthResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse depth response: %w", err)
	}
	if result.Status != statusOK {
		return nil, apiError(result.Status, result.Code, result.Message)
	}

	depth, ok := result.Data[symbol]
	if !ok {
		return nil, fmt.Errorf("no depth for %s: %w", symbol, fyers.ErrNotFound)
	}
	return &depth, nil
}

// Orderbook retrieves the day's orders
func (c *Client) Orderbook(ctx context.Context) ([]Order, error) {
	respBody, err := c.doRequest(ctx, orderbookPath, nil)
	if err != nil {
		return nil, fmt.Errorf("get orderbook failed: %w", err)
	}

	var result orderbookResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse orderbook response: %w", err)
	}
	if result.Status != statusOK {
		return nil, apiError(result.Status, result.Code, result.Message)
	}
	return result.OrderBook, nil
}

// Positions retrieves the net positions report
func (c *Client) Positions(ctx context.Context) (*PositionsReport, error) {
	respBody, err := c.doRequest(ctx, positionsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("get positions failed: %w", err)
	}

	var result positionsResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse positions response: %w", err)
	}
	if result.Status != statusOK {
		return nil, apiError(result.Status, result.Code, result.Message)
	}
	return &result.PositionsReport, nil
}

// Tradebook retrieves the day's trades
func (c *Client) Tradebook(ctx context.Context) ([]Trade, error) {
	respBody, err := c.doRequest(ctx, tradebookPath, nil)
	if err != nil {
		return nil, fmt.Errorf("get tradebook failed: %w", err)
	}

	var result tradebookResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse tradebook response: %w", err)
	}
	if result.Status != statusOK {
		return nil, apiError(result.Status, result.Code, result.Message)
	}
	return result.TradeBook, nil
}

// RateLimiter returns the underlying rate limiter, or nil if rate limiting is
// not enabled
func (c *Client) RateLimiter() *limiter.HTTPRateLimiter {
	return c.rateLimiter
}
