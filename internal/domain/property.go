package domain

// Property is a rentable listing owned by exactly one User.
// Nightly price is stored in minor currency units (cents) so price
// comparisons never touch floating point.
type Property struct {
	ID                int64
	OwnerID           int64
	Title             string
	Description       string
	ThumbnailURL      string
	CoverURL          string
	CostPerNightCents int64
	ParkingSpaces     int
	Bathrooms         int
	Bedrooms          int
	Country           string
	Street            string
	City              string
	Province          string // 2-letter code, provinces lookup table
	PostalCode        string
	Active            bool
}

// PropertyListing is a search result row: the property plus the mean of
// its review ratings. The average is always derived, never stored.
type PropertyListing struct {
	Property
	AverageRating float64
}

// PropertyFilters narrows a property search. The zero value of a field
// means "not set": no predicate is emitted for it.
//
// City carries the caller's raw term including its leading sigil
// character (e.g. "#Vancouver"); the sigil is stripped before matching.
// Min/MaxPricePerNight are in major currency units and are converted to
// cents against the stored column.
type PropertyFilters struct {
	City             string
	OwnerID          int64
	MinPricePerNight int64
	MaxPricePerNight int64
	MinRating        float64
}
