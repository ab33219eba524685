package app_test

import (
	"context"
	"errors"
	"testing"

	"staybook/internal/app"
	"staybook/internal/domain"
)

type fakeFeed struct {
	payloads map[int64]map[string]any
	err      error
}

func (f *fakeFeed) ChangedListings(ctx context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(f.payloads))
	for id := range f.payloads {
		ids = append(ids, id)
	}
	return ids, f.err
}

func (f *fakeFeed) GetListing(ctx context.Context, id int64) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.payloads[id]
	if !ok {
		return nil, errors.New("feed: not found")
	}
	return p, nil
}

func TestImportListing_UpsertsMappedPayload(t *testing.T) {
	repo := &fakeRepo{}
	feed := &fakeFeed{payloads: map[int64]map[string]any{
		101: {
			"listing_id":     float64(101),
			"host_id":        float64(4),
			"name":           "Forest cabin",
			"summary":        "Quiet cabin in the woods",
			"cost_per_night": 120.5, // major units
			"bathrooms":      float64(1),
			"bedrooms":       float64(2),
			"address": map[string]any{
				"country":     "Canada",
				"street":      "12 Pine Trail",
				"city":        "Whistler",
				"province":    "bc",
				"postal_code": "V8E0A1",
			},
		},
	}}
	imp := app.NewImportService(feed, repo)

	if err := imp.ImportListing(context.Background(), 101); err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(repo.upserted) != 1 {
		t.Fatalf("upserted %d rows, want 1", len(repo.upserted))
	}
	p := repo.upserted[0]
	if p.ID != 101 || p.OwnerID != 4 {
		t.Fatalf("ids not mapped: %+v", p)
	}
	if p.Title != "Forest cabin" || p.City != "Whistler" || p.Province != "BC" {
		t.Fatalf("fields not mapped: %+v", p)
	}
	if p.CostPerNightCents != 12050 {
		t.Fatalf("price = %d cents, want 12050", p.CostPerNightCents)
	}
	if !p.Active {
		t.Fatal("imported listing should default to active")
	}
}

func TestImportListing_NotFoundIsRecordedMiss(t *testing.T) {
	repo := &fakeRepo{}
	imp := app.NewImportService(&fakeFeed{payloads: map[int64]map[string]any{}}, repo)

	if err := imp.ImportListing(context.Background(), 55); err != nil {
		t.Fatalf("404 should not fail the run: %v", err)
	}
	if len(repo.misses) != 1 || repo.misses[0] != 55 {
		t.Fatalf("expected a recorded miss for 55, got %v", repo.misses)
	}
	if len(repo.upserted) != 0 {
		t.Fatal("nothing should be upserted on a miss")
	}
}

func TestImportListing_UnmappablePayloadIsRecordedMiss(t *testing.T) {
	repo := &fakeRepo{}
	feed := &fakeFeed{payloads: map[int64]map[string]any{
		// no owner, no price
		7: {"listing_id": float64(7), "name": "Mystery unit"},
	}}
	imp := app.NewImportService(feed, repo)

	if err := imp.ImportListing(context.Background(), 7); err != nil {
		t.Fatalf("unmappable payload should not fail the run: %v", err)
	}
	if len(repo.misses) != 1 {
		t.Fatalf("expected a recorded miss, got %v", repo.misses)
	}
}

func TestImportListing_UnexpectedErrorBubbles(t *testing.T) {
	repo := &fakeRepo{}
	imp := app.NewImportService(&fakeFeed{err: errors.New("connection reset")}, repo)

	if err := imp.ImportListing(context.Background(), 1); err == nil {
		t.Fatal("expected transport error to bubble up")
	}
	if len(repo.misses) != 0 {
		t.Fatalf("transport errors are not misses: %v", repo.misses)
	}
}

var _ domain.ListingFeed = (*fakeFeed)(nil)
