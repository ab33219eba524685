//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"staybook/internal/domain"
	mysqlrepo "staybook/internal/storage/mysql"
)

// ---------- helpers ----------

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/migrations)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=staybook",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/staybook?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC", hostPort)

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

func date(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

// ---------- the test ----------

func TestRepo_MySQL_CRUDAndSearch(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// users
	owner, err := repo.CreateUser(ctx, domain.User{Name: "Eva Stanley", Email: "eva@example.com", PasswordHash: "$2a$fakehash"})
	if err != nil {
		t.Fatalf("CreateUser owner: %v", err)
	}
	if owner.ID == 0 || owner.CreatedAt.IsZero() {
		t.Fatalf("persisted row not returned: %+v", owner)
	}
	guest, err := repo.CreateUser(ctx, domain.User{Name: "Louisa Meyer", Email: "louisa@example.com", PasswordHash: "$2a$fakehash"})
	if err != nil {
		t.Fatalf("CreateUser guest: %v", err)
	}

	if _, err := repo.CreateUser(ctx, domain.User{Name: "Dup", Email: "eva@example.com", PasswordHash: "x"}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken for duplicate email, got %v", err)
	}

	got, err := repo.UserByEmail(ctx, "eva@example.com")
	if err != nil || got.ID != owner.ID {
		t.Fatalf("UserByEmail: %+v, %v", got, err)
	}
	if _, err := repo.UserByID(ctx, 999999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// properties
	mkProp := func(title, city string, cents int64) domain.Property {
		return domain.Property{
			OwnerID: owner.ID, Title: title, Description: "d",
			ThumbnailURL: "t", CoverURL: "c",
			CostPerNightCents: cents, ParkingSpaces: 1, Bathrooms: 1, Bedrooms: 2,
			Country: "Canada", Street: "1 Main St", City: city, Province: "BC", PostalCode: "V5K0A1",
			Active: true,
		}
	}
	cheap, err := repo.CreateProperty(ctx, mkProp("Cheap cabin", "Vancouver", 5000))
	if err != nil {
		t.Fatalf("CreateProperty: %v", err)
	}
	pricey, err := repo.CreateProperty(ctx, mkProp("Pricey loft", "Vancouver", 25000))
	if err != nil {
		t.Fatalf("CreateProperty: %v", err)
	}
	elsewhere, err := repo.CreateProperty(ctx, mkProp("Prairie house", "Winnipeg", 9000))
	if err != nil {
		t.Fatalf("CreateProperty: %v", err)
	}

	// reservations + reviews (ratings feed the derived average)
	seedReview := func(propertyID int64, rating int) {
		t.Helper()
		rv, err := repo.CreateReservation(ctx, domain.Reservation{
			PropertyID: propertyID, GuestID: guest.ID,
			StartDate: date("2026-09-01"), EndDate: date("2026-09-05"),
		})
		if err != nil {
			t.Fatalf("CreateReservation: %v", err)
		}
		if _, err := repo.CreateReview(ctx, domain.Review{
			ReservationID: rv.ID, PropertyID: propertyID, GuestID: guest.ID,
			Rating: rating, Message: "m",
		}); err != nil {
			t.Fatalf("CreateReview: %v", err)
		}
	}
	seedReview(cheap.ID, 4)
	seedReview(cheap.ID, 5)
	seedReview(pricey.ID, 3)
	seedReview(elsewhere.ID, 5)

	// unfiltered search: ordered by price ascending, annotated averages
	all, err := repo.SearchProperties(ctx, domain.PropertyFilters{}, 0)
	if err != nil {
		t.Fatalf("SearchProperties: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 listings, got %d", len(all))
	}
	if all[0].ID != cheap.ID || all[2].ID != pricey.ID {
		t.Fatalf("not ordered by price: %+v", all)
	}
	if all[0].AverageRating != 4.5 {
		t.Fatalf("average rating = %v, want 4.5", all[0].AverageRating)
	}

	// city substring with sigil + price bounds
	vans, err := repo.SearchProperties(ctx, domain.PropertyFilters{City: "#couv", MinPricePerNight: 100}, 10)
	if err != nil {
		t.Fatalf("SearchProperties city: %v", err)
	}
	if len(vans) != 1 || vans[0].ID != pricey.ID {
		t.Fatalf("city+price filter wrong: %+v", vans)
	}

	// minimum rating via HAVING
	rated, err := repo.SearchProperties(ctx, domain.PropertyFilters{MinRating: 4}, 10)
	if err != nil {
		t.Fatalf("SearchProperties rating: %v", err)
	}
	if len(rated) != 2 {
		t.Fatalf("expected 2 listings rated >= 4, got %+v", rated)
	}

	// guest reservation log: full history, not just future stays
	if _, err := repo.CreateReservation(ctx, domain.Reservation{
		PropertyID: cheap.ID, GuestID: guest.ID,
		StartDate: date("2024-03-10"), EndDate: date("2024-03-14"),
	}); err != nil {
		t.Fatalf("CreateReservation past: %v", err)
	}
	rs, err := repo.GuestReservations(ctx, guest.ID, 10)
	if err != nil {
		t.Fatalf("GuestReservations: %v", err)
	}
	if len(rs) != 5 {
		t.Fatalf("expected 5 reservations, got %d", len(rs))
	}
	if !rs[0].StartDate.Equal(date("2024-03-10")) {
		t.Fatalf("expected completed stay first, got %+v", rs[0])
	}
	if rs[0].Title == "" || rs[0].AverageRating == 0 {
		t.Fatalf("reservation rows not joined with property: %+v", rs[0])
	}

	// importer upsert: same id twice updates in place
	imp := domain.Property{
		ID: 70001, OwnerID: owner.ID, Title: "Imported flat", Description: "d",
		ThumbnailURL: "t", CoverURL: "c", CostPerNightCents: 8000,
		ParkingSpaces: 0, Bathrooms: 1, Bedrooms: 1,
		Country: "Canada", Street: "2 Side St", City: "Victoria", Province: "BC", PostalCode: "V8V1A1",
		Active: true,
	}
	if err := repo.UpsertListing(ctx, imp); err != nil {
		t.Fatalf("UpsertListing: %v", err)
	}
	imp.CostPerNightCents = 8800
	if err := repo.UpsertListing(ctx, imp); err != nil {
		t.Fatalf("UpsertListing update: %v", err)
	}
	var cents int64
	if err := db.QueryRow("SELECT cost_per_night_cents FROM properties WHERE id = ?", imp.ID).Scan(&cents); err != nil {
		t.Fatalf("read back upsert: %v", err)
	}
	if cents != 8800 {
		t.Fatalf("upsert did not update in place: %d", cents)
	}

	// import misses are idempotent per listing
	if err := repo.LogImportMiss(ctx, 70002, 404, "not found"); err != nil {
		t.Fatalf("LogImportMiss: %v", err)
	}
	if err := repo.LogImportMiss(ctx, 70002, 404, "not found"); err != nil {
		t.Fatalf("LogImportMiss repeat: %v", err)
	}
}
