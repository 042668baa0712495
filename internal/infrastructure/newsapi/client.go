// Package newsapi implements the search-API adapter. One call fetches one
// page; pagination and retry policy live with the caller.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"NewsIngest/internal/config"
	"NewsIngest/internal/domain"
	"NewsIngest/internal/ports"
)

const statusOK = "ok"

// FetchError covers both transport failures and API-reported failures, so
// the orchestrator branches on a single error type.
type FetchError struct {
	Status  string
	Message string
}

func (e *FetchError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("news api status %q: %s", e.Status, e.Message)
	}
	return "news api: " + e.Message
}

// Client calls the search API over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ ports.PageFetcher = (*Client)(nil)

// NewClient builds a client from configuration. The timeout bounds each
// page request; there is no retry at this layer.
func NewClient(cfg config.NewsAPIConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

type apiResponse struct {
	Status       string       `json:"status"`
	TotalResults int          `json:"totalResults"`
	Articles     []apiArticle `json:"articles"`
	Message      string       `json:"message"`
}

type apiArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// FetchPage requests one result page for one search expression. Any failure,
// whether a transport error or a non-"ok" payload status, is returned as a
// *FetchError.
func (c *Client) FetchPage(ctx context.Context, query string, page, pageSize int, window domain.TimeWindow) (*domain.PageResult, error) {
	reqURL, err := c.buildURL(query, page, pageSize, window)
	if err != nil {
		return nil, &FetchError{Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &FetchError{Message: err.Error()}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Message: "connection error: " + err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, &FetchError{Message: "read response: " + err.Error()}
	}

	var payload apiResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &FetchError{Message: "response is not valid JSON"}
	}

	if payload.Status != statusOK {
		msg := payload.Message
		if msg == "" {
			msg = fmt.Sprintf("unexpected API failure (http %d)", resp.StatusCode)
		}
		return nil, &FetchError{Status: payload.Status, Message: msg}
	}

	articles := make([]domain.RawArticle, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		articles = append(articles, domain.RawArticle{
			Author:      a.Author,
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			URLToImage:  a.URLToImage,
			PublishedAt: a.PublishedAt,
			Content:     a.Content,
			SourceID:    a.Source.ID,
			SourceName:  a.Source.Name,
		})
	}

	return &domain.PageResult{
		Articles:     articles,
		TotalResults: payload.TotalResults,
	}, nil
}

func (c *Client) buildURL(query string, page, pageSize int, window domain.TimeWindow) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("sortBy", "publishedAt")
	params.Set("from", window.From.Format(time.RFC3339))
	params.Set("to", window.To.Format(time.RFC3339))
	u.RawQuery = params.Encode()

	return u.String(), nil
}
