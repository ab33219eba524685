package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"staybook/internal/domain"
)

type ImportService struct {
	feed domain.ListingFeed
	repo domain.BookingRepository
}

func NewImportService(f domain.ListingFeed, r domain.BookingRepository) *ImportService {
	return &ImportService{feed: f, repo: r}
}

// ImportListing fetches one listing from the partner feed and upserts
// it. Known feed refusals (404/401/403) are recorded as misses and do
// not fail the run; anything else bubbles up.
func (s *ImportService) ImportListing(ctx context.Context, id int64) error {
	payload, err := s.feed.GetListing(ctx, id)
	if err != nil {
		low := strings.ToLower(err.Error())

		if errors.Is(err, domain.ErrNotFound) || strings.Contains(low, "not found") {
			_ = s.repo.LogImportMiss(ctx, id, 404, "not found")
			return nil
		}
		if strings.Contains(low, "forbidden") || strings.Contains(low, "unauthorized") {
			_ = s.repo.LogImportMiss(ctx, id, 403, "inactive")
			return nil
		}
		return err
	}

	p, err := mapListing(payload)
	if err != nil {
		_ = s.repo.LogImportMiss(ctx, id, 422, err.Error())
		return nil
	}

	if err := s.repo.UpsertListing(ctx, p); err != nil {
		return fmt.Errorf("upsert listing %d: %w", id, err)
	}
	return nil
}
