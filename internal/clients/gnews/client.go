// Package gnews provides a client for the Google News RSS search feed
package gnews

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed/rss"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/haito/internal/common"
	"github.com/bobmcallan/haito/internal/models"
)

const (
	DefaultBaseURL   = "https://news.google.com/rss/search"
	DefaultLanguage  = "ja"
	DefaultRegion    = "JP"
	DefaultTimeout   = 8 * time.Second
	DefaultRateLimit = 8 // requests per second
)

// Client implements interfaces.NewsFeed
type Client struct {
	baseURL    string
	language   string
	region     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the search endpoint
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLocale sets the feed language and region (hl/gl/ceid)
func WithLocale(language, region string) ClientOption {
	return func(c *Client) {
		if language != "" {
			c.language = language
		}
		if region != "" {
			c.region = region
		}
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

// NewClient creates a new Google News client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		language: DefaultLanguage,
		region:   DefaultRegion,
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

// NewClientFromConfig creates a client from the news section of the clients config
func NewClientFromConfig(cfg common.GNewsConfig, logger *common.Logger) *Client {
	opts := []ClientOption{
		WithLogger(logger),
		WithTimeout(cfg.GetTimeout()),
		WithRateLimit(cfg.RateLimit),
		WithLocale(cfg.Language, cfg.Region),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}
	return NewClient(opts...)
}

// FeedError represents a non-200 feed response
type FeedError struct {
	StatusCode int
	Query      string
}

func (e *FeedError) Error() string {
	return fmt.Sprintf("Google News feed error (status: %d, query: %q)", e.StatusCode, e.Query)
}

// Search fetches the RSS feed for a free-text query and returns its items in feed order
func (c *Client) Search(ctx context.Context, query string) ([]models.FeedItem, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", c.language)
	params.Set("gl", c.region)
	params.Set("ceid", c.region+":"+c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml")

	c.logger.Debug().Str("query", query).Msg("Google News request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FeedError{StatusCode: resp.StatusCode, Query: query}
	}

	parser := &rss.Parser{}
	feed, err := parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]models.FeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}
		items = append(items, toFeedItem(it))
	}
	return items, nil
}

func toFeedItem(it *rss.Item) models.FeedItem {
	item := models.FeedItem{
		Title:       strings.TrimSpace(it.Title),
		Description: it.Description,
		Link:        strings.TrimSpace(it.Link),
		Published:   it.PubDateParsed,
	}
	if it.Source != nil {
		item.Source = strings.TrimSpace(it.Source.Title)
	}
	for _, cat := range it.Categories {
		if cat != nil && strings.TrimSpace(cat.Value) != "" {
			item.Categories = append(item.Categories, strings.TrimSpace(cat.Value))
		}
	}
	return item
}
