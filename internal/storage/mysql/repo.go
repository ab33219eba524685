package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"staybook/internal/domain"
)

const dupEntryErrNo = 1062

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func isDupEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == dupEntryErrNo
}

// ---- users ----

func (r *Repo) scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *Repo) UserByID(ctx context.Context, id int64) (domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, selectUserByIDSQL, id))
}

func (r *Repo) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, selectUserByEmailSQL, email))
}

// CreateUser inserts and returns the full persisted row, including the
// generated id and defaults.
func (r *Repo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	res, err := r.db.ExecContext(ctx, insertUserSQL, u.Name, u.Email, u.PasswordHash)
	if err != nil {
		if isDupEntry(err) {
			return domain.User{}, domain.ErrEmailTaken
		}
		return domain.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.User{}, err
	}
	return r.UserByID(ctx, id)
}

// ---- properties ----

func propertyArgs(p domain.Property) []any {
	return []any{
		p.OwnerID, p.Title, p.Description, p.ThumbnailURL, p.CoverURL,
		p.CostPerNightCents, p.ParkingSpaces, p.Bathrooms, p.Bedrooms,
		p.Country, p.Street, p.City, p.Province, p.PostalCode, p.Active,
	}
}

func (r *Repo) propertyByID(ctx context.Context, id int64) (domain.Property, error) {
	var p domain.Property
	err := r.db.QueryRowContext(ctx, selectPropertyByIDSQL, id).Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.ThumbnailURL, &p.CoverURL,
		&p.CostPerNightCents, &p.ParkingSpaces, &p.Bathrooms, &p.Bedrooms,
		&p.Country, &p.Street, &p.City, &p.Province, &p.PostalCode, &p.Active,
	)
	if err == sql.ErrNoRows {
		return domain.Property{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Property{}, err
	}
	return p, nil
}

func (r *Repo) CreateProperty(ctx context.Context, p domain.Property) (domain.Property, error) {
	res, err := r.db.ExecContext(ctx, insertPropertySQL, propertyArgs(p)...)
	if err != nil {
		return domain.Property{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Property{}, err
	}
	return r.propertyByID(ctx, id)
}

// UpsertListing is the importer's write path: the partner's listing id
// is the primary key, so repeated imports update in place.
func (r *Repo) UpsertListing(ctx context.Context, p domain.Property) error {
	args := append([]any{p.ID}, propertyArgs(p)...)
	_, err := r.db.ExecContext(ctx, upsertListingSQL, args...)
	return err
}

func (r *Repo) LogImportMiss(ctx context.Context, listingID int64, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertImportMissSQL, listingID, status, reason)
	return err
}

func (r *Repo) SearchProperties(ctx context.Context, f domain.PropertyFilters, limit int) ([]domain.PropertyListing, error) {
	q, args := buildSearchQuery(f, limit)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PropertyListing
	for rows.Next() {
		var pl domain.PropertyListing
		if err := rows.Scan(
			&pl.ID, &pl.OwnerID, &pl.Title, &pl.Description, &pl.ThumbnailURL, &pl.CoverURL,
			&pl.CostPerNightCents, &pl.ParkingSpaces, &pl.Bathrooms, &pl.Bedrooms,
			&pl.Country, &pl.Street, &pl.City, &pl.Province, &pl.PostalCode, &pl.Active,
			&pl.AverageRating,
		); err != nil {
			return nil, err
		}
		out = append(out, pl)
	}
	return out, rows.Err()
}

// ---- reservations & reviews ----

func (r *Repo) CreateReservation(ctx context.Context, rv domain.Reservation) (domain.Reservation, error) {
	res, err := r.db.ExecContext(ctx, insertReservationSQL,
		rv.PropertyID, rv.GuestID, rv.StartDate, rv.EndDate)
	if err != nil {
		return domain.Reservation{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Reservation{}, err
	}
	var out domain.Reservation
	err = r.db.QueryRowContext(ctx, selectReservationByIDSQL, id).Scan(
		&out.ID, &out.PropertyID, &out.GuestID, &out.StartDate, &out.EndDate)
	if err != nil {
		return domain.Reservation{}, err
	}
	return out, nil
}

func (r *Repo) CreateReview(ctx context.Context, rv domain.Review) (domain.Review, error) {
	res, err := r.db.ExecContext(ctx, insertReviewSQL,
		rv.ReservationID, rv.PropertyID, rv.GuestID, rv.Rating, rv.Message)
	if err != nil {
		return domain.Review{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Review{}, err
	}
	var out domain.Review
	err = r.db.QueryRowContext(ctx, selectReviewByIDSQL, id).Scan(
		&out.ID, &out.ReservationID, &out.PropertyID, &out.GuestID, &out.Rating, &out.Message)
	if err != nil {
		return domain.Review{}, err
	}
	return out, nil
}

func (r *Repo) GuestReservations(ctx context.Context, guestID int64, limit int) ([]domain.ReservationListing, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	rows, err := r.db.QueryContext(ctx, guestReservationsSQL, guestID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ReservationListing
	for rows.Next() {
		var rl domain.ReservationListing
		if err := rows.Scan(
			&rl.ReservationID, &rl.StartDate, &rl.EndDate,
			&rl.ID, &rl.OwnerID, &rl.Title, &rl.Description, &rl.ThumbnailURL, &rl.CoverURL,
			&rl.CostPerNightCents, &rl.ParkingSpaces, &rl.Bathrooms, &rl.Bedrooms,
			&rl.Country, &rl.Street, &rl.City, &rl.Province, &rl.PostalCode, &rl.Active,
			&rl.AverageRating,
		); err != nil {
			return nil, err
		}
		out = append(out, rl)
	}
	return out, rows.Err()
}
