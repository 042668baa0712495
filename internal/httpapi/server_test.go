package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"NewsIngest/internal/config"
	"NewsIngest/internal/domain"
	"NewsIngest/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubKeywords struct{}

func (stubKeywords) ActiveRules(ctx context.Context, language string) ([]domain.KeywordRule, error) {
	return []domain.KeywordRule{{Term: "AI", Category: "topic", Active: true}}, nil
}

type stubFetcher struct {
	result *domain.PageResult
}

func (s stubFetcher) FetchPage(ctx context.Context, q string, page, pageSize int, window domain.TimeWindow) (*domain.PageResult, error) {
	if s.result == nil {
		return &domain.PageResult{}, nil
	}
	return s.result, nil
}

type stubNews struct {
	rows     []domain.CuratedArticle
	upserted int
}

func (s *stubNews) UpsertBulk(ctx context.Context, articles []domain.CuratedArticle) (int, error) {
	s.upserted += len(articles)
	return len(articles), nil
}

func (s *stubNews) List(ctx context.Context, limit, offset int) ([]domain.CuratedArticle, error) {
	if offset >= len(s.rows) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.rows) {
		end = len(s.rows)
	}
	return s.rows[offset:end], nil
}

func newTestRouter(news *stubNews, fetcher stubFetcher) *gin.Engine {
	ingestor := usecase.NewIngestor(usecase.IngestorDeps{
		Keywords: stubKeywords{},
		Fetcher:  fetcher,
		News:     news,
		Config: config.IngestConfig{
			MaxQueryChars:   500,
			MinContentChars: 10,
			DaysBack:        7,
			PageSize:        100,
			MaxPages:        1,
		},
	})
	return NewServer(ingestor, news, nil).Router()
}

func doRequest(t *testing.T, router *gin.Engine, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return rec, payload
}

func TestHealth(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&stubNews{}, stubFetcher{})
	rec, payload := doRequest(t, router, http.MethodGet, "/", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if payload["status"] != "ok" {
		t.Fatalf("payload = %v", payload)
	}
}

func TestListNewsClampsLimit(t *testing.T) {
	t.Parallel()

	news := &stubNews{}
	for i := 0; i < 300; i++ {
		news.rows = append(news.rows, domain.CuratedArticle{
			URLHash:     "h",
			Title:       "t",
			PublishedAt: time.Now().UTC(),
		})
	}
	router := newTestRouter(news, stubFetcher{})

	rec, payload := doRequest(t, router, http.MethodGet, "/news?limit=999", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if payload["count"].(float64) != 200 {
		t.Fatalf("count = %v, want clamp to 200", payload["count"])
	}
}

func TestIngestPersistsAndReports(t *testing.T) {
	t.Parallel()

	page := &domain.PageResult{
		Articles: []domain.RawArticle{{
			Author:      "Jane Doe",
			Title:       "Title",
			Description: "Description",
			URL:         "https://example.com/a",
			PublishedAt: "2025-08-19T09:00:00Z",
			Content:     "long enough content body",
		}},
		TotalResults: 1,
	}
	news := &stubNews{}
	router := newTestRouter(news, stubFetcher{result: page})

	rec, payload := doRequest(t, router, http.MethodPost, "/ingest", `{"days_back": 3, "page_size": 50, "max_pages": 1}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", rec.Code, rec.Body.String())
	}
	if payload["inserted"].(float64) != 1 {
		t.Fatalf("inserted = %v, want 1", payload["inserted"])
	}
	if news.upserted != 1 {
		t.Fatalf("repository received %d rows, want 1", news.upserted)
	}

	metrics, ok := payload["metrics"].(map[string]any)
	if !ok {
		t.Fatalf("missing metrics: %v", payload)
	}
	if metrics["raw_count"].(float64) != 1 || metrics["clean_count"].(float64) != 1 {
		t.Fatalf("unexpected metrics: %v", metrics)
	}
}

func TestPreviewDoesNotPersist(t *testing.T) {
	t.Parallel()

	page := &domain.PageResult{
		Articles: []domain.RawArticle{{
			Title:       "Title",
			Description: "Description",
			URL:         "https://example.com/a",
			PublishedAt: "2025-08-19T09:00:00Z",
			Content:     "long enough content body",
		}},
		TotalResults: 1,
	}
	news := &stubNews{}
	router := newTestRouter(news, stubFetcher{result: page})

	rec, payload := doRequest(t, router, http.MethodGet, "/preview?days_back=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	if payload["count"].(float64) != 1 {
		t.Fatalf("count = %v, want 1", payload["count"])
	}
	if news.upserted != 0 {
		t.Fatalf("preview persisted %d rows", news.upserted)
	}
}
