package company

import (
	"strings"
	"time"

	ulid "github.com/oklog/ulid/v2"

	"github.com/quillbooks/backend/internal/domain/errors"
)

// MatchCategory finds the category for a transaction description. The first
// rule in iteration order with a pattern that is a case-insensitive substring
// of the description wins. Returns false when no rule matches.
func MatchCategory(description string, rules []CategoryRule) (string, bool) {
	lowered := strings.ToLower(description)
	for _, rule := range rules {
		for _, pattern := range rule.Patterns {
			if pattern == "" {
				continue
			}
			if strings.Contains(lowered, strings.ToLower(pattern)) {
				return rule.Category, true
			}
		}
	}
	return "", false
}

// AddPattern adds a free-text pattern for a category. If a rule for the
// category already exists the pattern is appended, unless an exact
// (case-sensitive) duplicate is present, which fails with DUPLICATE_PATTERN
// and leaves the rules untouched. Otherwise a new rule is created with a
// fresh identifier.
func AddPattern(rules []CategoryRule, pattern, category string) ([]CategoryRule, error) {
	if pattern == "" {
		return rules, errors.NewValidationError("pattern must not be empty")
	}
	if category == "" {
		return rules, errors.NewValidationError("category must not be empty")
	}
	for i, rule := range rules {
		if rule.Category != category {
			continue
		}
		for _, existing := range rule.Patterns {
			if existing == pattern {
				return rules, errors.NewDuplicatePatternError("pattern already present for category").
					WithDetail("pattern", pattern).
					WithDetail("category", category)
			}
		}
		out := make([]CategoryRule, len(rules))
		copy(out, rules)
		out[i].Patterns = append(append([]string{}, rule.Patterns...), pattern)
		return out, nil
	}
	out := append(append([]CategoryRule{}, rules...), CategoryRule{
		RuleID:   ulid.Make().String(),
		Category: category,
		Patterns: []string{pattern},
	})
	return out, nil
}

// AutoCategorize assigns matched categories to transactions that have none,
// recording a field-level edit per change. Excluded transactions are left
// alone. Returns the number of transactions changed.
func AutoCategorize(data *Data) int {
	changed := 0
	for i := range data.Transactions {
		tx := &data.Transactions[i]
		if tx.Category != "" || tx.Excluded {
			continue
		}
		category, ok := MatchCategory(tx.Description, data.CategoryRules)
		if !ok {
			continue
		}
		tx.Edits = append(tx.Edits, TransactionEdit{
			EditID:    ulid.Make().String(),
			Timestamp: time.Now().UTC(),
			Changes: map[string]FieldChange{
				"category": {From: tx.Category, To: category},
			},
		})
		tx.Category = category
		changed++
	}
	return changed
}
