package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"NewsIngest/internal/domain"
	"NewsIngest/internal/ports"
)

// PersistenceError reports an upsert failure unrelated to the expected
// identity-key conflict: connectivity loss, not-null violations, and the like.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// NewsRepository persists curated articles into the news table and serves
// the read path.
type NewsRepository struct {
	db *sqlx.DB
}

var _ ports.NewsRepository = (*NewsRepository)(nil)

// NewNewsRepository wires the shared sqlx handle.
func NewNewsRepository(db *sqlx.DB) *NewsRepository {
	return &NewsRepository{db: db}
}

// UpsertBulk writes the curated set in one transaction. Rows with a new
// identity hash are inserted; existing ones have every non-key column
// overwritten (last write wins). Returns the number of rows submitted.
func (r *NewsRepository) UpsertBulk(ctx context.Context, articles []domain.CuratedArticle) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}

	query, args, err := buildUpsert(articles)
	if err != nil {
		return 0, &PersistenceError{Op: "build upsert", Err: err}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, &PersistenceError{Op: "begin", Err: err}
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		_ = tx.Rollback()
		return 0, &PersistenceError{Op: "upsert", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return 0, &PersistenceError{Op: "commit", Err: err}
	}

	return len(articles), nil
}

func buildUpsert(articles []domain.CuratedArticle) (string, []any, error) {
	builder := psql.Insert("news").
		Columns("url", "url_hash", "title", "description", "content",
			"author", "published_at", "url_to_image", "source_id", "source_name")

	for _, a := range articles {
		builder = builder.Values(a.URL, a.URLHash, a.Title, a.Description, a.Content,
			a.Author, a.PublishedAt, a.URLToImage, a.SourceID, a.SourceName)
	}

	builder = builder.Suffix(`ON CONFLICT (url_hash) DO UPDATE SET
        url = EXCLUDED.url,
        title = EXCLUDED.title,
        description = EXCLUDED.description,
        content = EXCLUDED.content,
        author = EXCLUDED.author,
        published_at = EXCLUDED.published_at,
        url_to_image = EXCLUDED.url_to_image,
        source_id = EXCLUDED.source_id,
        source_name = EXCLUDED.source_name`)

	return builder.ToSql()
}

// List returns a page of persisted articles, newest first.
func (r *NewsRepository) List(ctx context.Context, limit, offset int) ([]domain.CuratedArticle, error) {
	query, args, err := psql.
		Select("url", "url_hash", "title", "description", "content",
			"author", "published_at", "url_to_image",
			"COALESCE(source_id, '') AS source_id", "source_name").
		From("news").
		OrderBy("published_at DESC NULLS LAST").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	var articles []domain.CuratedArticle
	if err := r.db.SelectContext(ctx, &articles, query, args...); err != nil {
		return nil, fmt.Errorf("select news: %w", err)
	}
	return articles, nil
}
