// Package news aggregates feed items for held securities
package news

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/haito/internal/common"
	"github.com/bobmcallan/haito/internal/interfaces"
	"github.com/bobmcallan/haito/internal/models"
)

const (
	// MaxWorkers caps the number of concurrent feed fetches.
	MaxWorkers = 8

	defaultTitle  = "タイトルなし"
	defaultSource = "Google News"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// categoryRules are evaluated in order; the first rule with a keyword
// contained in the title wins.
var categoryRules = []struct {
	category string
	keywords []string
}{
	{models.NewsCategoryDividend, []string{"配当", "増配", "減配", "配当金"}},
	{models.NewsCategoryEarnings, []string{"決算", "業績", "売上", "利益", "黒字", "赤字"}},
	{models.NewsCategoryPrice, []string{"株価", "上昇", "下落", "高値", "安値", "反発"}},
}

// Service implements interfaces.NewsService.
type Service struct {
	feed          interfaces.NewsFeed
	logger        *common.Logger
	maxWorkers    int
	summaryLength int
	now           func() time.Time
}

// NewService creates a news service. maxWorkers is clamped to 1..MaxWorkers.
func NewService(feed interfaces.NewsFeed, logger *common.Logger, maxWorkers, summaryLength int) *Service {
	if maxWorkers <= 0 || maxWorkers > MaxWorkers {
		maxWorkers = MaxWorkers
	}
	if summaryLength <= 0 {
		summaryLength = 200
	}
	return &Service{
		feed:          feed,
		logger:        logger,
		maxWorkers:    maxWorkers,
		summaryLength: summaryLength,
		now:           time.Now,
	}
}

// ForSecurity fetches and normalizes up to limit articles for one security.
// Any failure yields an empty list.
func (s *Service) ForSecurity(ctx context.Context, sec models.Security, limit int) []models.NewsArticle {
	query := strings.TrimSpace(sec.Name)
	if query == "" {
		query = sec.Ticker
	}

	items, err := s.feed.Search(ctx, query)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", sec.Ticker).Msg("News fetch failed")
		return []models.NewsArticle{}
	}

	fetchedAt := s.now().UTC()
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	articles := make([]models.NewsArticle, 0, len(items))
	for i, it := range items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			title = defaultTitle
		}

		published := fetchedAt
		if it.Published != nil && !it.Published.IsZero() {
			published = it.Published.UTC()
		}

		articles = append(articles, models.NewsArticle{
			ID:            fmt.Sprintf("%s-%d-%d", sec.Ticker, i, fetchedAt.Unix()),
			Title:         title,
			Summary:       s.summarize(it.Description),
			Source:        sourceLabel(it),
			PublishedAt:   published,
			URL:           it.Link,
			RelatedTicker: sec.Ticker,
			RelatedName:   sec.Name,
			Category:      Categorize(title),
		})
	}
	return articles
}

// Aggregate fetches news for every security with bounded concurrency, then
// drops repeated URLs (first kept wins) and sorts newest first.
func (s *Service) Aggregate(ctx context.Context, secs []models.Security, perLimit int) []models.NewsArticle {
	if len(secs) == 0 {
		return []models.NewsArticle{}
	}

	results := make([][]models.NewsArticle, len(secs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(s.maxWorkers, len(secs)))
	for i, sec := range secs {
		g.Go(func() error {
			results[i] = s.ForSecurity(gctx, sec, perLimit)
			return nil
		})
	}
	_ = g.Wait() // workers never fail; errors degrade to empty lists

	seen := make(map[string]struct{})
	merged := make([]models.NewsArticle, 0)
	for _, batch := range results {
		for _, a := range batch {
			if _, dup := seen[a.URL]; dup {
				continue
			}
			seen[a.URL] = struct{}{}
			merged = append(merged, a)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedAt.After(merged[j].PublishedAt)
	})

	s.logger.Debug().Int("securities", len(secs)).Int("articles", len(merged)).Msg("News aggregated")
	return merged
}

// Categorize classifies an article by keywords in its title.
func Categorize(title string) string {
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(title, kw) {
				return rule.category
			}
		}
	}
	return models.NewsCategoryGeneral
}

func sourceLabel(it models.FeedItem) string {
	if src := strings.TrimSpace(it.Source); src != "" {
		return src
	}
	if len(it.Categories) > 0 && strings.TrimSpace(it.Categories[0]) != "" {
		return strings.TrimSpace(it.Categories[0])
	}
	return defaultSource
}

// summarize strips markup and truncates to summaryLength runes.
func (s *Service) summarize(description string) string {
	text := tagPattern.ReplaceAllString(description, "")
	text = strings.TrimSpace(html.UnescapeString(text))
	if utf8.RuneCountInString(text) <= s.summaryLength {
		return text
	}
	return string([]rune(text)[:s.summaryLength])
}
