package domain

import "time"

// KeywordRule is one operator-managed search term read from the keyword store.
type KeywordRule struct {
	Term     string `db:"term"`
	Category string `db:"category"`
	Negate   bool   `db:"negate"`
	Active   bool   `db:"active"`
	Language string `db:"language"`
}

// RawArticle mirrors one article exactly as the search API returns it.
type RawArticle struct {
	Author      string
	Title       string
	Description string
	URL         string
	URLToImage  string
	PublishedAt string
	Content     string
	SourceID    string
	SourceName  string
}

// CuratedArticle is a raw article after normalization, validation, and dedupe.
// URLHash is the identity key: the same article keeps the same hash across
// pages and across runs.
type CuratedArticle struct {
	URL         string    `db:"url" json:"url"`
	URLHash     string    `db:"url_hash" json:"url_hash"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Content     string    `db:"content" json:"content"`
	Author      string    `db:"author" json:"author"`
	PublishedAt time.Time `db:"published_at" json:"published_at"`
	URLToImage  string    `db:"url_to_image" json:"url_to_image"`
	SourceID    string    `db:"source_id" json:"source_id"`
	SourceName  string    `db:"source_name" json:"source_name"`
}

// PageResult is one page of search results plus the API's own metadata.
type PageResult struct {
	Articles     []RawArticle
	TotalResults int
}

// IngestionMetrics summarizes one ingestion run. Returned to callers,
// never persisted.
type IngestionMetrics struct {
	PagesAttempted int `json:"pages_attempted"`
	RawCount       int `json:"raw_count"`
	CleanCount     int `json:"clean_count"`
}

// IngestResult is what a persisting ingestion reports back.
type IngestResult struct {
	Inserted int              `json:"inserted"`
	Metrics  IngestionMetrics `json:"metrics"`
}

// TimeWindow bounds a search to articles published inside [From, To].
type TimeWindow struct {
	From time.Time
	To   time.Time
}

// WindowDaysBack builds a UTC window ending at now and starting daysBack days earlier.
func WindowDaysBack(now time.Time, daysBack int) TimeWindow {
	now = now.UTC()
	return TimeWindow{
		From: now.AddDate(0, 0, -daysBack),
		To:   now,
	}
}
