package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"NewsIngest/internal/domain"
	"NewsIngest/internal/ports"
)

// KeywordRepository reads operator-managed keyword rules. The rule set is
// owned by an external store; this side only reads.
type KeywordRepository struct {
	db *sqlx.DB
}

var _ ports.KeywordSource = (*KeywordRepository)(nil)

// NewKeywordRepository wires the shared sqlx handle.
func NewKeywordRepository(db *sqlx.DB) *KeywordRepository {
	return &KeywordRepository{db: db}
}

// ActiveRules returns every active rule, optionally narrowed to one language.
func (r *KeywordRepository) ActiveRules(ctx context.Context, language string) ([]domain.KeywordRule, error) {
	query := `
        SELECT term, category, negate, active, COALESCE(language, '') AS language
        FROM news_keywords
        WHERE active = TRUE
    `
	args := []any{}
	if language != "" {
		query += " AND (language IS NULL OR language = $1)"
		args = append(args, language)
	}
	query += " ORDER BY category, term"

	var rules []domain.KeywordRule
	if err := r.db.SelectContext(ctx, &rules, query, args...); err != nil {
		return nil, fmt.Errorf("select active keywords: %w", err)
	}
	return rules, nil
}
