// Package stockapi provides a client for the stock quote/search API
package stockapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

const (
	DefaultBaseURL   = "http://localhost:3000"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// Client implements the StockAPIClient interface
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new stock API client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a quote provider failure: timeout, non-2xx status, or
// an unsuccessful response envelope. StatusCode is 0 for transport errors.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stock API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// IsAPIError reports whether err is a provider failure.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// envelope is the provider's standard response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error,omitempty"`
}

// get performs a rate-limited GET request and unwraps the response envelope
// into result.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Stock API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeouts and connection failures become typed errors so callers
		// can recover without inspecting error strings.
		return &APIError{StatusCode: 0, Message: err.Error(), Endpoint: path}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "provider reported failure"
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg, Endpoint: path}
	}

	if err := json.Unmarshal(env.Data, result); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}

	return nil
}

// quoteResponse mirrors the provider's quote payload.
type quoteResponse struct {
	Symbol                     string  `json:"symbol"`
	RegularMarketPrice         float64 `json:"regularMarketPrice"`
	RegularMarketPreviousClose float64 `json:"regularMarketPreviousClose"`
	RegularMarketChange        float64 `json:"regularMarketChange"`
	RegularMarketChangePct     float64 `json:"regularMarketChangePercent"`
}

// GetQuote retrieves the live price and previous close for one symbol
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	symbol = models.NormalizeSymbol(symbol)
	path := fmt.Sprintf("/api/stock/%s/quote", url.PathEscape(symbol))

	var q quoteResponse
	if err := c.get(ctx, path, nil, &q); err != nil {
		return nil, err
	}

	change := q.RegularMarketChange
	if change == 0 && q.RegularMarketPreviousClose != 0 {
		change = q.RegularMarketPrice - q.RegularMarketPreviousClose
	}

	changePct := q.RegularMarketChangePct
	if changePct == 0 && q.RegularMarketPreviousClose != 0 {
		changePct = change / q.RegularMarketPreviousClose * 100
	}

	return &models.Quote{
		Symbol:        symbol,
		Price:         q.RegularMarketPrice,
		PreviousClose: q.RegularMarketPreviousClose,
		Change:        change,
		ChangePct:     changePct,
		Timestamp:     time.Now(),
	}, nil
}

// searchItemResponse mirrors one provider search match.
type searchItemResponse struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"shortName,omitempty"`
	LongName  string `json:"longName,omitempty"`
	Exchange  string `json:"exchange,omitempty"`
}

// SearchSymbols resolves a symbol/name query, capped at limit results
func (c *Client) SearchSymbols(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	var items []searchItemResponse
	if err := c.get(ctx, "/api/stocks/search", params, &items); err != nil {
		return nil, err
	}

	// Providers occasionally ignore the limit parameter; enforce the cap.
	if len(items) > limit {
		items = items[:limit]
	}

	results := make([]models.SearchResult, len(items))
	for i, item := range items {
		name := item.ShortName
		if name == "" {
			name = item.LongName
		}
		results[i] = models.SearchResult{
			Symbol:   models.NormalizeSymbol(item.Symbol),
			Name:     name,
			Exchange: item.Exchange,
		}
	}

	c.logger.Debug().Str("query", query).Int("results", len(results)).Msg("Stock API search returned results")

	return results, nil
}

// Ensure Client implements StockAPIClient
var _ interfaces.StockAPIClient = (*Client)(nil)
