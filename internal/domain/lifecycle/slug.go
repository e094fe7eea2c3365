package lifecycle

import (
	"strings"

	"github.com/google/uuid"
)

// slugify lowercases the name and collapses every run of non-alphanumeric
// characters into a single dash.
func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// newCompanyID derives a company identifier from its display name: the slug
// plus a random suffix for uniqueness.
func newCompanyID(name string) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	slug := slugify(name)
	if slug == "" {
		slug = "company"
	}
	return slug + "-" + suffix
}
