// Package clean normalizes raw search-API articles into curated records:
// required-field validation, URL canonicalization, identity hashing,
// deduplication, and a minimum-length quality gate.
package clean

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"NewsIngest/internal/domain"
)

// AnonymousAuthor replaces an empty author field.
const AnonymousAuthor = "Anonymous"

// MaxContentChars bounds stored content so a single article cannot blow up
// row size.
const MaxContentChars = 20000

// DefaultMinContentChars is the quality-gate threshold below which an
// article counts as a stub.
const DefaultMinContentChars = 800

// trackingParams are query parameters that vary per click without changing
// the article; two URLs differing only here identify the same article.
var trackingParams = map[string]bool{
	"gclid":  true,
	"fbclid": true,
}

// extraCharsRE matches the API's truncation marker, e.g. "[+1234 chars]".
var extraCharsRE = regexp.MustCompile(`\[\+(\d+)\s+chars\]`)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Clean validates, normalizes, and deduplicates one page of raw articles.
// Rows without a URL, with an unparseable published timestamp, or with an
// empty title or description after trimming are dropped. Within the input,
// the first occurrence of each identity hash wins.
func Clean(raw []domain.RawArticle) []domain.CuratedArticle {
	curated := make([]domain.CuratedArticle, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for _, article := range raw {
		title := strings.TrimSpace(article.Title)
		description := strings.TrimSpace(article.Description)
		rawURL := strings.TrimSpace(article.URL)
		if rawURL == "" {
			continue
		}

		normalized, ok := NormalizeURL(rawURL)
		if !ok {
			continue
		}
		// Dedupe before validation: a first occurrence claims the hash even
		// when a later step drops it.
		hash := IdentityHash(normalized)
		if seen[hash] {
			continue
		}
		seen[hash] = true

		publishedAt, ok := parseTimestamp(strings.TrimSpace(article.PublishedAt))
		if !ok {
			continue
		}

		if title == "" || description == "" {
			continue
		}

		author := strings.TrimSpace(article.Author)
		if author == "" {
			author = AnonymousAuthor
		}

		curated = append(curated, domain.CuratedArticle{
			URL:         normalized,
			URLHash:     hash,
			Title:       title,
			Description: description,
			Content:     truncate(strings.TrimSpace(article.Content), MaxContentChars),
			Author:      author,
			PublishedAt: publishedAt,
			URLToImage:  strings.TrimSpace(article.URLToImage),
			SourceID:    strings.TrimSpace(article.SourceID),
			SourceName:  strings.TrimSpace(article.SourceName),
		})
	}

	return curated
}

// NormalizeURL canonicalizes an article URL: lower-cases the scheme and
// host, strips tracking query parameters and the fragment, and
// re-serializes. Idempotent. Returns ok=false for unparseable input.
func NormalizeURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	params := u.Query()
	for name := range params {
		if isTrackingParam(name) {
			params.Del(name)
		}
	}
	u.RawQuery = params.Encode()

	return u.String(), true
}

func isTrackingParam(name string) bool {
	lower := strings.ToLower(name)
	return trackingParams[lower] || strings.HasPrefix(lower, "utm_")
}

// IdentityHash derives the stable identity key from a normalized URL.
// The same hash is used for in-run dedupe and the persistence-layer
// uniqueness constraint.
func IdentityHash(normalizedURL string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(normalizedURL)))
	return hex.EncodeToString(sum[:])
}

// FilterMinLength drops articles whose effective content length falls below
// minChars. The API truncates content bodies and appends a "[+N chars]"
// marker for the elided tail, so effective length is the literal content
// length plus any marker count.
func FilterMinLength(articles []domain.CuratedArticle, minChars int) []domain.CuratedArticle {
	kept := make([]domain.CuratedArticle, 0, len(articles))
	for _, article := range articles {
		total := len([]rune(article.Content)) + ExtraChars(article.Content)
		if total >= minChars {
			kept = append(kept, article)
		}
	}
	return kept
}

// ExtraChars extracts N from the first "[+N chars]" marker, 0 when absent.
func ExtraChars(content string) int {
	m := extraCharsRE.FindStringSubmatch(content)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// Dedupe keeps the first occurrence of every identity hash. Used for the
// cross-page pass after pagination; pages built from overlapping search
// expressions can repeat articles.
func Dedupe(articles []domain.CuratedArticle) []domain.CuratedArticle {
	seen := make(map[string]bool, len(articles))
	unique := make([]domain.CuratedArticle, 0, len(articles))
	for _, article := range articles {
		if seen[article.URLHash] {
			continue
		}
		seen[article.URLHash] = true
		unique = append(unique, article)
	}
	return unique
}

func parseTimestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
