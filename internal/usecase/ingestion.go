package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"NewsIngest/internal/clean"
	"NewsIngest/internal/config"
	"NewsIngest/internal/domain"
	"NewsIngest/internal/ports"
	"NewsIngest/internal/query"
)

// IngestorDeps wires all driven adapters into the ingestion use case.
type IngestorDeps struct {
	Keywords ports.KeywordSource
	Fetcher  ports.PageFetcher
	News     ports.NewsRepository
	Config   config.IngestConfig
	Logger   *slog.Logger
}

// Ingestor runs the fetch -> clean -> filter -> dedupe -> upsert pipeline.
// Pagination is strictly sequential with a short inter-page delay; the loop
// is deliberately not parallelized so the upstream rate limit is respected
// and per-page dedupe stays simple.
type Ingestor struct {
	keywords ports.KeywordSource
	fetcher  ports.PageFetcher
	news     ports.NewsRepository
	builder  *query.Builder
	cfg      config.IngestConfig
	logger   *slog.Logger
}

// NewIngestor constructs the orchestration component.
func NewIngestor(deps IngestorDeps) *Ingestor {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{
		keywords: deps.Keywords,
		fetcher:  deps.Fetcher,
		news:     deps.News,
		builder:  query.NewBuilder(deps.Config.MaxQueryChars),
		cfg:      deps.Config,
		logger:   logger,
	}
}

// RunIngestion fetches, cleans, and deduplicates articles for the window
// without persisting anything. Search expressions are rebuilt from the
// keyword store on every call; the rule set may change between runs.
//
// A page with zero raw articles, or one shorter than pageSize, terminates
// that expression's paging normally. Any fetch failure aborts the whole run:
// pages already fetched in the same run are discarded, never persisted.
func (i *Ingestor) RunIngestion(ctx context.Context, window domain.TimeWindow, pageSize, maxPages int) ([]domain.CuratedArticle, domain.IngestionMetrics, error) {
	var metrics domain.IngestionMetrics

	rules, err := i.keywords.ActiveRules(ctx, i.cfg.Language)
	if err != nil {
		return nil, metrics, fmt.Errorf("load keyword rules: %w", err)
	}

	queries, err := i.builder.Build(rules, nil)
	if err != nil {
		return nil, metrics, err
	}

	runID := uuid.NewString()
	logger := i.logger.With("run_id", runID)
	logger.Info("ingestion run started",
		"queries", len(queries), "page_size", pageSize, "max_pages", maxPages,
		"from", window.From, "to", window.To)

	var accumulated []domain.CuratedArticle
	for _, q := range queries {
		for page := 1; page <= maxPages; page++ {
			result, err := i.fetcher.FetchPage(ctx, q, page, pageSize, window)
			if err != nil {
				return nil, metrics, err
			}

			metrics.PagesAttempted++
			metrics.RawCount += len(result.Articles)

			if len(result.Articles) == 0 {
				break
			}

			curated := clean.FilterMinLength(clean.Clean(result.Articles), i.cfg.MinContentChars)
			accumulated = append(accumulated, curated...)

			logger.Debug("page processed",
				"page", page, "raw", len(result.Articles), "curated", len(curated))

			// Fewer articles than requested means the last page; skip the
			// extra request that would come back empty.
			if len(result.Articles) < pageSize {
				break
			}

			if page < maxPages {
				if err := sleepCtx(ctx, i.cfg.PageDelay()); err != nil {
					return nil, metrics, err
				}
			}
		}
	}

	// Overlapping search expressions can surface the same article on
	// different pages, so dedupe once more across the whole run.
	final := clean.Dedupe(accumulated)
	metrics.CleanCount = len(final)

	logger.Info("ingestion run finished",
		"pages", metrics.PagesAttempted, "raw", metrics.RawCount, "curated", metrics.CleanCount)

	return final, metrics, nil
}

// Preview runs the pipeline over the last daysBack days without touching
// the news table. Backs read-only preview callers.
func (i *Ingestor) Preview(ctx context.Context, daysBack, pageSize, maxPages int) ([]domain.CuratedArticle, domain.IngestionMetrics, error) {
	if daysBack <= 0 {
		daysBack = i.cfg.DaysBack
	}
	if pageSize <= 0 {
		pageSize = i.cfg.PageSize
	}
	if maxPages <= 0 {
		maxPages = i.cfg.MaxPages
	}

	window := domain.WindowDaysBack(time.Now(), daysBack)
	return i.RunIngestion(ctx, window, pageSize, maxPages)
}

// ProcessIngestion runs a full persisting ingestion over the last daysBack
// days. An empty curated set reports zero inserted rows and is not an error.
// Non-positive arguments fall back to the configured defaults.
func (i *Ingestor) ProcessIngestion(ctx context.Context, daysBack, pageSize, maxPages int) (domain.IngestResult, error) {
	if daysBack <= 0 {
		daysBack = i.cfg.DaysBack
	}
	if pageSize <= 0 {
		pageSize = i.cfg.PageSize
	}
	if maxPages <= 0 {
		maxPages = i.cfg.MaxPages
	}

	window := domain.WindowDaysBack(time.Now(), daysBack)

	curated, metrics, err := i.RunIngestion(ctx, window, pageSize, maxPages)
	if err != nil {
		return domain.IngestResult{Metrics: metrics}, err
	}

	inserted := 0
	if len(curated) > 0 {
		inserted, err = i.news.UpsertBulk(ctx, curated)
		if err != nil {
			return domain.IngestResult{Metrics: metrics}, err
		}
	}

	return domain.IngestResult{Inserted: inserted, Metrics: metrics}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
