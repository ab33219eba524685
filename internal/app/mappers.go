package app

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"staybook/internal/domain"
)

// Partner feeds disagree on field names; each logical field has an
// ordered alias list and the first non-empty hit wins.
var listingAliases = map[string][]string{
	"id":          {"id", "listing_id", "listingId"},
	"owner":       {"owner_id", "host_id", "owner.id", "host.id"},
	"title":       {"title", "name", "headline"},
	"description": {"description", "summary", "about"},
	"thumbnail":   {"thumbnail_url", "thumbnail", "photos.thumb"},
	"cover":       {"cover_url", "cover", "photos.cover"},
	"parking":     {"parking_spaces", "parking"},
	"bathrooms":   {"bathrooms", "bathroom_count", "number_of_bathrooms"},
	"bedrooms":    {"bedrooms", "bedroom_count", "number_of_bedrooms"},
	"country":     {"country", "address.country"},
	"street":      {"street", "address.street", "address.line1"},
	"city":        {"city", "address.city", "locality"},
	"province":    {"province", "state", "address.province", "address.state"},
	"postal":      {"postal_code", "zip", "address.postal_code", "address.zip"},
}

// lookupAny walks a dot path through nested maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func lookupStr(m map[string]any, path string) string {
	if s, ok := lookupAny(m, path).(string); ok {
		return s
	}
	return ""
}

func aliasStr(m map[string]any, key string) string {
	for _, p := range listingAliases[key] {
		if s := strings.TrimSpace(lookupStr(m, p)); s != "" {
			return s
		}
	}
	return ""
}

// aliasInt64 accepts float64 (JSON numbers), ints, and numeric strings.
func aliasInt64(m map[string]any, key string) int64 {
	for _, p := range listingAliases[key] {
		switch v := lookupAny(m, p).(type) {
		case float64:
			return int64(v)
		case int:
			return int64(v)
		case int64:
			return v
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
				return n
			}
		}
	}
	return 0
}

func lookupFloat(m map[string]any, paths ...string) (float64, bool) {
	for _, p := range paths {
		switch v := lookupAny(m, p).(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// mapListing turns a loose feed payload into a Property row. It fails
// when the payload lacks an id, an owner, or a usable nightly price.
func mapListing(payload map[string]any) (domain.Property, error) {
	id := aliasInt64(payload, "id")
	if id == 0 {
		return domain.Property{}, fmt.Errorf("listing payload has no id")
	}
	owner := aliasInt64(payload, "owner")
	if owner == 0 {
		return domain.Property{}, fmt.Errorf("listing %d has no owner", id)
	}

	// cents field preferred; major-unit fallback converted
	var cents int64
	if f, ok := lookupFloat(payload, "cost_per_night_cents", "price_cents"); ok {
		cents = int64(f)
	} else if f, ok := lookupFloat(payload, "cost_per_night", "price", "nightly_rate"); ok {
		cents = int64(math.Round(f * 100))
	}
	if cents <= 0 {
		return domain.Property{}, fmt.Errorf("listing %d has no nightly price", id)
	}

	active := true
	if v, ok := lookupAny(payload, "active").(bool); ok {
		active = v
	}

	return domain.Property{
		ID:                id,
		OwnerID:           owner,
		Title:             aliasStr(payload, "title"),
		Description:       aliasStr(payload, "description"),
		ThumbnailURL:      aliasStr(payload, "thumbnail"),
		CoverURL:          aliasStr(payload, "cover"),
		CostPerNightCents: cents,
		ParkingSpaces:     int(aliasInt64(payload, "parking")),
		Bathrooms:         int(aliasInt64(payload, "bathrooms")),
		Bedrooms:          int(aliasInt64(payload, "bedrooms")),
		Country:           aliasStr(payload, "country"),
		Street:            aliasStr(payload, "street"),
		City:              aliasStr(payload, "city"),
		Province:          strings.ToUpper(aliasStr(payload, "province")),
		PostalCode:        aliasStr(payload, "postal"),
		Active:            active,
	}, nil
}
