package domain

import (
	"context"
	"errors"
)

var (
	// ErrNotFound tags "no rows matched" so callers can tell an empty
	// result from a failed query.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken is returned when a registration collides with the
	// unique email key.
	ErrEmailTaken = errors.New("email already registered")
)

type BookingRepository interface {
	// Write paths
	CreateUser(ctx context.Context, u User) (User, error)
	CreateProperty(ctx context.Context, p Property) (Property, error)
	CreateReservation(ctx context.Context, r Reservation) (Reservation, error)
	CreateReview(ctx context.Context, rv Review) (Review, error)
	UpsertListing(ctx context.Context, p Property) error
	LogImportMiss(ctx context.Context, listingID int64, status int, reason string) error

	// Read paths
	UserByID(ctx context.Context, id int64) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
	GuestReservations(ctx context.Context, guestID int64, limit int) ([]ReservationListing, error)
	SearchProperties(ctx context.Context, f PropertyFilters, limit int) ([]PropertyListing, error)
}

// ListingFeed is the partner feed the importer pulls listings from.
type ListingFeed interface {
	ChangedListings(ctx context.Context) ([]int64, error)
	GetListing(ctx context.Context, id int64) (map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
