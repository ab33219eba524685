package mysql

import (
	"strings"
	"unicode/utf8"

	"staybook/internal/domain"
)

// Base of the property search. Every result row is a property annotated
// with the mean of its joined review ratings.
const searchPropertiesBase = `
SELECT
  properties.id,
  properties.owner_id,
  properties.title,
  properties.description,
  properties.thumbnail_url,
  properties.cover_url,
  properties.cost_per_night_cents,
  properties.parking_spaces,
  properties.bathrooms,
  properties.bedrooms,
  properties.country,
  properties.street,
  properties.city,
  properties.province,
  properties.postal_code,
  properties.active,
  avg(property_reviews.rating) AS average_rating
FROM properties
JOIN property_reviews ON properties.id = property_reviews.property_id
`

const defaultSearchLimit = 10

// buildSearchQuery assembles a parameterized SELECT from an optional set
// of filters. Predicates are appended in a fixed order (city, owner,
// min price, max price) so the emitted text is deterministic, and each
// arg binds to its placeholder by ordinal position. A zero/empty filter
// field emits nothing. WHERE vs AND is decided by an explicit
// first-predicate flag, never by how many args happen to be pushed.
func buildSearchQuery(f domain.PropertyFilters, limit int) (string, []any) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var b strings.Builder
	b.WriteString(searchPropertiesBase)
	args := make([]any, 0, 6)

	first := true
	predicate := func(expr string, v any) {
		if first {
			b.WriteString("WHERE ")
			first = false
		} else {
			b.WriteString("AND ")
		}
		b.WriteString(expr)
		b.WriteByte('\n')
		args = append(args, v)
	}

	if f.City != "" {
		predicate("properties.city LIKE ?", citySubstring(f.City))
	}
	if f.OwnerID != 0 {
		predicate("properties.owner_id = ?", f.OwnerID)
	}
	if f.MinPricePerNight != 0 {
		predicate("properties.cost_per_night_cents >= ?", toCents(f.MinPricePerNight))
	}
	if f.MaxPricePerNight != 0 {
		predicate("properties.cost_per_night_cents <= ?", toCents(f.MaxPricePerNight))
	}

	b.WriteString("GROUP BY properties.id\n")

	if f.MinRating != 0 {
		b.WriteString("HAVING avg(property_reviews.rating) >= ?\n")
		args = append(args, f.MinRating)
	}

	args = append(args, limit)
	b.WriteString("ORDER BY properties.cost_per_night_cents ASC\nLIMIT ?")

	return b.String(), args
}

// citySubstring strips the leading sigil rune callers prefix city terms
// with ("#Vancouver") and wraps the remainder for substring matching.
// Case sensitivity is left to the column collation.
func citySubstring(term string) string {
	_, n := utf8.DecodeRuneInString(term)
	return "%" + term[n:] + "%"
}

// toCents converts a major-unit price bound to the minor-unit column.
func toCents(major int64) int64 { return major * 100 }
