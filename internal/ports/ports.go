package ports

import (
	"context"
	"time"

	"NewsIngest/internal/domain"
)

// KeywordSource reads the active search keywords before every run.
type KeywordSource interface {
	ActiveRules(ctx context.Context, language string) ([]domain.KeywordRule, error)
}

// PageFetcher pulls one page of raw articles for one search expression.
// Transport failures and API-reported failures both come back as the error
// value, so callers have a single failure path to branch on.
type PageFetcher interface {
	FetchPage(ctx context.Context, query string, page, pageSize int, window domain.TimeWindow) (*domain.PageResult, error)
}

// NewsRepository persists curated articles and serves read queries.
type NewsRepository interface {
	UpsertBulk(ctx context.Context, articles []domain.CuratedArticle) (int, error)
	List(ctx context.Context, limit, offset int) ([]domain.CuratedArticle, error)
}

// Scheduler controls when the ingestion job executes.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
