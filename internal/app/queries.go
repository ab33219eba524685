package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"staybook/internal/domain"
)

type QueryService struct {
	repo     domain.BookingRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.BookingRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) UserByID(ctx context.Context, id int64) (domain.User, error) {
	key := fmt.Sprintf("user:id:%d", id)
	var u domain.User
	if ok, _ := s.cache.Get(ctx, key, &u); ok {
		return u, nil
	}
	u, err := s.repo.UserByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	_ = s.cache.Set(ctx, key, u, int(s.cacheTTL.Seconds()))
	return u, nil
}

// UserByEmail lowercases the address before lookup; emails are stored
// normalized.
func (s *QueryService) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	key := "user:email:" + email
	var u domain.User
	if ok, _ := s.cache.Get(ctx, key, &u); ok {
		return u, nil
	}
	u, err := s.repo.UserByEmail(ctx, email)
	if err != nil {
		return domain.User{}, err
	}
	_ = s.cache.Set(ctx, key, u, int(s.cacheTTL.Seconds()))
	return u, nil
}

func (s *QueryService) GuestReservations(ctx context.Context, guestID int64, limit int) ([]domain.ReservationListing, error) {
	key := reservationsKey(guestID, limit)
	var out []domain.ReservationListing
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	rs, err := s.repo.GuestReservations(ctx, guestID, limit)
	if err != nil {
		return nil, err
	}
	// copy before caching so callers can't mutate the cached value
	cp := append([]domain.ReservationListing(nil), rs...)
	_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	return cp, nil
}

func (s *QueryService) SearchProperties(ctx context.Context, f domain.PropertyFilters, limit int) ([]domain.PropertyListing, error) {
	key := searchKey(f, limit)
	var out []domain.PropertyListing
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	ps, err := s.repo.SearchProperties(ctx, f, limit)
	if err != nil {
		return nil, err
	}
	cp := append([]domain.PropertyListing(nil), ps...)
	_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	return cp, nil
}

// defaultPageSize mirrors the storage layer's fallback so cache keys
// built from a non-positive limit land on the same entry the write
// path invalidates.
const defaultPageSize = 10

func reservationsKey(guestID int64, limit int) string {
	if limit <= 0 {
		limit = defaultPageSize
	}
	return fmt.Sprintf("reservations:%d:%d", guestID, limit)
}

// searchKey is deterministic over the filter set; search entries are
// refreshed by TTL only, not invalidated per write.
func searchKey(f domain.PropertyFilters, limit int) string {
	return fmt.Sprintf("search:%s:%d:%d:%d:%g:%d",
		f.City, f.OwnerID, f.MinPricePerNight, f.MaxPricePerNight, f.MinRating, limit)
}
