package query

import (
	"fmt"
	"sort"
	"strings"

	"NewsIngest/internal/domain"
)

// orSeparatorLen accounts for the " OR " joining each additional term.
const orSeparatorLen = 4

// minCategoryBudget keeps every category block usable even when the overall
// budget is split across many categories.
const minCategoryBudget = 50

// ConfigurationError reports a keyword set that cannot produce any query:
// no active rules at all, or a requested category with zero active terms.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "query configuration: " + e.Reason
}

// NoQueryGeneratedError reports that every block combination exceeded the
// character budget.
type NoQueryGeneratedError struct {
	MaxChars int
}

func (e *NoQueryGeneratedError) Error() string {
	return fmt.Sprintf("no query fits within %d chars; reduce terms or adjust categories", e.MaxChars)
}

// Builder turns categorized keyword rules into boolean search expressions
// bounded by the search API's query-length ceiling.
type Builder struct {
	maxChars int
}

// NewBuilder configures the builder with the hard per-query character budget.
func NewBuilder(maxChars int) *Builder {
	return &Builder{maxChars: maxChars}
}

// Build produces one or more search expressions from the active rules.
// The keyword set is operator-controlled and may outgrow the budget, so the
// builder degrades into several smaller queries instead of failing outright:
// terms are packed greedily into OR-blocks per category, then one block per
// category is combined with AND (cartesian product), keeping only the
// combinations that fit. Greedy packing is an approximation, not optimal.
//
// categoryOrder fixes which categories participate and in what order; when
// empty, all categories found in the rules are used in sorted order.
func (b *Builder) Build(rules []domain.KeywordRule, categoryOrder []string) ([]string, error) {
	groups := groupTerms(rules)
	if len(groups) == 0 {
		return nil, &ConfigurationError{Reason: "no active keyword rules"}
	}

	categories := categoryOrder
	if len(categories) == 0 {
		categories = make([]string, 0, len(groups))
		for cat := range groups {
			categories = append(categories, cat)
		}
		sort.Strings(categories)
	}

	perCategoryBudget := b.maxChars / len(categories)
	if perCategoryBudget < minCategoryBudget {
		perCategoryBudget = minCategoryBudget
	}

	blocksByCategory := make([][]string, len(categories))
	for i, cat := range categories {
		terms := groups[cat]
		if len(terms) == 0 {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("no active terms for category %q", cat)}
		}
		chunks := chunkTerms(terms, perCategoryBudget)
		blocks := make([]string, len(chunks))
		for j, chunk := range chunks {
			blocks[j] = "(" + strings.Join(chunk, " OR ") + ")"
		}
		blocksByCategory[i] = blocks
	}

	queries := combineBlocks(blocksByCategory, b.maxChars)
	if len(queries) == 0 {
		return nil, &NoQueryGeneratedError{MaxChars: b.maxChars}
	}
	return queries, nil
}

// groupTerms formats each active rule (quoting, negation) and buckets it by
// category. Formatting happens once here, before any chunking.
func groupTerms(rules []domain.KeywordRule) map[string][]string {
	groups := make(map[string][]string)
	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		token := formatTerm(rule.Term)
		if token == "" {
			continue
		}
		if rule.Negate {
			token = "NOT " + token
		}
		groups[rule.Category] = append(groups[rule.Category], token)
	}
	return groups
}

// formatTerm trims the term and quotes it when it contains spaces, so the
// API matches the exact phrase.
func formatTerm(term string) string {
	term = strings.TrimSpace(term)
	if term == "" {
		return ""
	}
	if strings.Contains(term, " ") {
		return `"` + term + `"`
	}
	return term
}

// chunkTerms splits terms into runs whose joined length stays inside budget.
// Each term is charged its own length plus the " OR " separator.
func chunkTerms(terms []string, budget int) [][]string {
	var chunks [][]string
	var current []string
	length := 0

	for _, term := range terms {
		cost := len(term) + orSeparatorLen
		if length+cost > budget && len(current) > 0 {
			chunks = append(chunks, current)
			current = []string{term}
			length = cost
		} else {
			current = append(current, term)
			length += cost
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

// combineBlocks takes one block per category, joins them with " AND ", and
// keeps combinations within maxChars.
func combineBlocks(blocksByCategory [][]string, maxChars int) []string {
	var queries []string
	combo := make([]string, len(blocksByCategory))

	var walk func(depth int)
	walk = func(depth int) {
		if depth == len(blocksByCategory) {
			q := strings.Join(combo, " AND ")
			if len(q) <= maxChars {
				queries = append(queries, q)
			}
			return
		}
		for _, block := range blocksByCategory[depth] {
			combo[depth] = block
			walk(depth + 1)
		}
	}
	walk(0)

	return queries
}
