// Package yahoo provides a client for the Yahoo Finance public endpoints
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/haito/internal/common"
	"github.com/bobmcallan/haito/internal/models"
)

const (
	DefaultBaseURL        = "https://query1.finance.yahoo.com"
	DefaultProfileBaseURL = "https://query2.finance.yahoo.com"
	DefaultTimeout        = 10 * time.Second
	DefaultRateLimit      = 5 // requests per second

	// Yahoo rejects requests without a browser-like agent.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Payload paths. Only this file knows the provider's document shapes.
const (
	pathChartPrice     = "$.chart.result[0].meta.regularMarketPrice"
	pathChartDividends = "$.chart.result[0].events.dividends"
	pathQuoteResult    = "$.quoteResponse.result[0]"
	pathProfile        = "$.quoteSummary.result[0].assetProfile"
)

// ErrNoData is returned when the provider answered but the expected field is absent.
var ErrNoData = errors.New("yahoo: no data")

// Client implements interfaces.QuoteProvider
type Client struct {
	baseURL        string
	profileBaseURL string
	httpClient     *http.Client
	logger         *common.Logger
	limiter        *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the chart/quote base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithProfileBaseURL sets the quoteSummary base URL
func WithProfileBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.profileBaseURL = strings.TrimRight(baseURL, "/")
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
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new Yahoo Finance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:        DefaultBaseURL,
		profileBaseURL: DefaultProfileBaseURL,
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

// NewClientFromConfig creates a client from the yahoo section of the config
func NewClientFromConfig(cfg common.YahooConfig, logger *common.Logger) *Client {
	opts := []ClientOption{
		WithLogger(logger),
		WithTimeout(cfg.GetTimeout()),
		WithRateLimit(cfg.RateLimit),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}
	if cfg.ProfileBaseURL != "" {
		opts = append(opts, WithProfileBaseURL(cfg.ProfileBaseURL))
	}
	return NewClient(opts...)
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Yahoo API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET and decodes the body into a generic JSON value
func (c *Client) get(ctx context.Context, base, path string, params url.Values) (any, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := base + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", base+path).Msg("Yahoo API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	var doc any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return doc, nil
}

// lookup evaluates a JSONPath against doc. jsonpath may wrap a single match
// in a list; the first element is kept.
func lookup(doc any, path string) (any, error) {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoData, path, err)
	}
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoData, path)
		}
		v = list[0]
	}
	if v == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoData, path)
	}
	return v, nil
}

func chartPath(symbol string) string {
	return "/v8/finance/chart/" + url.PathEscape(symbol)
}

// GetPrice returns the regular-market price from the daily chart endpoint
func (c *Client) GetPrice(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", "1d")

	doc, err := c.get(ctx, c.baseURL, chartPath(symbol), params)
	if err != nil {
		return 0, err
	}

	v, err := lookup(doc, pathChartPrice)
	if err != nil {
		return 0, err
	}
	price, ok := v.(float64)
	if !ok || price <= 0 {
		return 0, fmt.Errorf("%w: %s has no usable price", ErrNoData, symbol)
	}
	return price, nil
}

// GetQuote returns the primary quote record
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.ProviderQuote, error) {
	params := url.Values{}
	params.Set("symbols", symbol)

	doc, err := c.get(ctx, c.baseURL, "/v7/finance/quote", params)
	if err != nil {
		return nil, err
	}

	v, err := lookup(doc, pathQuoteResult)
	if err != nil {
		return nil, err
	}
	rec, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s quote is not an object", ErrNoData, symbol)
	}

	// A record without a market price is still a valid listing.
	price := max(getFloat(rec, "regularMarketPrice"), 0)

	return &models.ProviderQuote{
		Symbol:    symbol,
		Name:      firstString(rec, "longName", "shortName", "displayName"),
		Price:     price,
		Currency:  firstString(rec, "currency"),
		Exchange:  firstString(rec, "fullExchangeName", "exchange"),
		RawSector: firstString(rec, "sectorDisp", "sector"),
	}, nil
}

// GetDividends returns dividend events from the trailing one-year chart,
// filtered to those on or after since, oldest first.
func (c *Client) GetDividends(ctx context.Context, symbol string, since time.Time) ([]models.DividendEvent, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", "1y")
	params.Set("events", "div")

	doc, err := c.get(ctx, c.baseURL, chartPath(symbol), params)
	if err != nil {
		return nil, err
	}

	// A chart without an events block simply has no dividends.
	v, err := lookup(doc, pathChartDividends)
	if err != nil {
		if errors.Is(err, ErrNoData) {
			return []models.DividendEvent{}, nil
		}
		return nil, err
	}
	raw, ok := v.(map[string]any)
	if !ok {
		return []models.DividendEvent{}, nil
	}

	events := make([]models.DividendEvent, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		amount := getFloat(m, "amount")
		ts := getFloat(m, "date")
		if amount <= 0 || ts <= 0 {
			continue
		}
		date := time.Unix(int64(ts), 0).UTC()
		if date.Before(since) {
			continue
		}
		events = append(events, models.DividendEvent{Date: date, Amount: amount})
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events, nil
}

// GetSector returns the raw sector from the company profile
func (c *Client) GetSector(ctx context.Context, symbol string) (string, error) {
	params := url.Values{}
	params.Set("modules", "assetProfile")

	doc, err := c.get(ctx, c.profileBaseURL, "/v10/finance/quoteSummary/"+url.PathEscape(symbol), params)
	if err != nil {
		return "", err
	}

	v, err := lookup(doc, pathProfile)
	if err != nil {
		return "", err
	}
	profile, ok := v.(map[string]any)
	if !ok {
		return "", fmt.Errorf("%w: %s profile is not an object", ErrNoData, symbol)
	}

	sector := firstString(profile, "sectorDisp", "sector")
	if sector == "" {
		return "", fmt.Errorf("%w: %s has no sector", ErrNoData, symbol)
	}
	return sector, nil
}

func getFloat(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case map[string]any:
		// some endpoints wrap numbers as {"raw": 123, "fmt": "123"}
		if raw, ok := v["raw"].(float64); ok {
			return raw
		}
	}
	return 0
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
