package models

import "time"

// News categories inferred from article titles.
const (
	NewsCategoryDividend = "配当"
	NewsCategoryEarnings = "業績"
	NewsCategoryPrice    = "株価"
	NewsCategoryGeneral  = "ニュース"
)

// NewsArticle is a normalized news item. Articles are produced per request
// and never persisted.
type NewsArticle struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Summary       string    `json:"summary"`
	Source        string    `json:"source"`
	PublishedAt   time.Time `json:"published_at"`
	URL           string    `json:"url"`
	RelatedTicker string    `json:"related_ticker"`
	RelatedName   string    `json:"related_name"`
	Category      string    `json:"category"`
}

// FeedItem is a raw entry returned by a news feed before normalization.
type FeedItem struct {
	Title       string
	Description string
	Link        string
	Source      string
	Categories  []string
	Published   *time.Time
}
