package newsapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"NewsIngest/internal/config"
	"NewsIngest/internal/domain"
)

func testWindow() domain.TimeWindow {
	to := time.Date(2025, time.August, 20, 12, 0, 0, 0, time.UTC)
	return domain.TimeWindow{From: to.AddDate(0, 0, -7), To: to}
}

func newTestClient(serverURL string) *Client {
	return NewClient(config.NewsAPIConfig{
		BaseURL: serverURL,
		APIKey:  "test-key",
		TimeoutSeconds: 2,
	})
}

func TestFetchPageSuccess(t *testing.T) {
	t.Parallel()

	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"apiKey":   q.Get("apiKey"),
			"q":        q.Get("q"),
			"page":     q.Get("page"),
			"pageSize": q.Get("pageSize"),
			"sortBy":   q.Get("sortBy"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"totalResults": 2,
			"articles": [
				{
					"source": {"id": "example", "name": "Example News"},
					"author": "Jane Doe",
					"title": "Title One",
					"description": "Desc one",
					"url": "https://example.com/1",
					"publishedAt": "2025-08-19T09:00:00Z",
					"content": "Body one"
				},
				{
					"source": {"id": null, "name": "Other"},
					"title": "Title Two",
					"description": "Desc two",
					"url": "https://example.com/2",
					"publishedAt": "2025-08-18T09:00:00Z",
					"content": "Body two"
				}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.FetchPage(context.Background(), "(AI)", 1, 100, testWindow())
	if err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}

	if result.TotalResults != 2 {
		t.Fatalf("totalResults = %d, want 2", result.TotalResults)
	}
	if len(result.Articles) != 2 {
		t.Fatalf("articles = %d, want 2", len(result.Articles))
	}
	if result.Articles[0].SourceID != "example" || result.Articles[0].SourceName != "Example News" {
		t.Fatalf("source not flattened: %+v", result.Articles[0])
	}

	if gotQuery["apiKey"] != "test-key" {
		t.Fatalf("apiKey param = %q", gotQuery["apiKey"])
	}
	if gotQuery["q"] != "(AI)" {
		t.Fatalf("q param = %q", gotQuery["q"])
	}
	if gotQuery["page"] != "1" || gotQuery["pageSize"] != "100" {
		t.Fatalf("pagination params = %q/%q", gotQuery["page"], gotQuery["pageSize"])
	}
	if gotQuery["sortBy"] != "publishedAt" {
		t.Fatalf("sortBy param = %q", gotQuery["sortBy"])
	}
}

func TestFetchPageAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"status": "error", "code": "rateLimited", "message": "You have made too many requests."}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchPage(context.Background(), "(AI)", 1, 100, testWindow())

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.Status != "error" {
		t.Fatalf("status = %q, want error", fetchErr.Status)
	}
	if fetchErr.Message != "You have made too many requests." {
		t.Fatalf("message = %q", fetchErr.Message)
	}
}

func TestFetchPageTransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchPage(context.Background(), "(AI)", 1, 100, testWindow())

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError for transport failure, got %v", err)
	}
}

func TestFetchPageInvalidJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchPage(context.Background(), "(AI)", 1, 100, testWindow())

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError for invalid JSON, got %v", err)
	}
}
