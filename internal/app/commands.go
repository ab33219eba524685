package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"staybook/internal/domain"
)

// ValidationError is a rejected input, distinct from storage failures.
// It is raised before any statement executes.
type ValidationError struct{ msg string }

func (e *ValidationError) Error() string { return e.msg }

func validationErr(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return &ValidationError{msg: err.Error()}
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		parts = append(parts, fmt.Sprintf("%s is missing or invalid", fe.Field()))
	}
	return &ValidationError{msg: strings.Join(parts, "; ")}
}

type RegisterUserInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type AddPropertyInput struct {
	OwnerID           int64  `json:"owner_id" validate:"required"`
	Title             string `json:"title" validate:"required"`
	Description       string `json:"description" validate:"required"`
	ThumbnailURL      string `json:"thumbnail_url" validate:"required"`
	CoverURL          string `json:"cover_url" validate:"required"`
	CostPerNightCents int64  `json:"cost_per_night_cents" validate:"required,gt=0"`
	ParkingSpaces     int    `json:"parking_spaces" validate:"gte=0"`
	Bathrooms         int    `json:"bathrooms" validate:"required,gt=0"`
	Bedrooms          int    `json:"bedrooms" validate:"required,gt=0"`
	Country           string `json:"country" validate:"required"`
	Street            string `json:"street" validate:"required"`
	City              string `json:"city" validate:"required"`
	Province          string `json:"province" validate:"required,len=2"`
	PostalCode        string `json:"postal_code" validate:"required"`
}

type AddReservationInput struct {
	PropertyID int64  `json:"property_id" validate:"required"`
	GuestID    int64  `json:"guest_id" validate:"required"`
	StartDate  string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type AddReviewInput struct {
	ReservationID int64  `json:"reservation_id" validate:"required"`
	Rating        int    `json:"rating" validate:"required,min=1,max=5"`
	Message       string `json:"message" validate:"required"`
}

type CommandService struct {
	repo     domain.BookingRepository
	cache    domain.Cache
	validate *validator.Validate
}

func NewCommandService(r domain.BookingRepository, c domain.Cache) *CommandService {
	return &CommandService{
		repo:     r,
		cache:    c,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterUser hashes the credential with bcrypt and stores the email
// lowercase. A duplicate email surfaces as domain.ErrEmailTaken.
func (s *CommandService) RegisterUser(ctx context.Context, in RegisterUserInput) (domain.User, error) {
	if err := s.validate.Struct(in); err != nil {
		return domain.User{}, validationErr(err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	u, err := s.repo.CreateUser(ctx, domain.User{
		Name:         in.Name,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(hash),
	})
	if err != nil {
		return domain.User{}, err
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, "user:email:"+u.Email)
		_ = s.cache.Del(ctx, fmt.Sprintf("user:id:%d", u.ID))
	}
	return u, nil
}

// AddProperty rejects any missing/empty required field before touching
// the database, then inserts and returns the persisted row.
func (s *CommandService) AddProperty(ctx context.Context, in AddPropertyInput) (domain.Property, error) {
	if err := s.validate.Struct(in); err != nil {
		return domain.Property{}, validationErr(err)
	}
	return s.repo.CreateProperty(ctx, domain.Property{
		OwnerID:           in.OwnerID,
		Title:             in.Title,
		Description:       in.Description,
		ThumbnailURL:      in.ThumbnailURL,
		CoverURL:          in.CoverURL,
		CostPerNightCents: in.CostPerNightCents,
		ParkingSpaces:     in.ParkingSpaces,
		Bathrooms:         in.Bathrooms,
		Bedrooms:          in.Bedrooms,
		Country:           in.Country,
		Street:            in.Street,
		City:              in.City,
		Province:          strings.ToUpper(in.Province),
		PostalCode:        in.PostalCode,
		Active:            true,
	})
}

func (s *CommandService) AddReservation(ctx context.Context, in AddReservationInput) (domain.Reservation, error) {
	if err := s.validate.Struct(in); err != nil {
		return domain.Reservation{}, validationErr(err)
	}
	start, end, err := parseStayDates(in.StartDate, in.EndDate)
	if err != nil {
		return domain.Reservation{}, err
	}
	rv, err := s.repo.CreateReservation(ctx, domain.Reservation{
		PropertyID: in.PropertyID,
		GuestID:    in.GuestID,
		StartDate:  start,
		EndDate:    end,
	})
	if err != nil {
		return domain.Reservation{}, err
	}
	if s.cache != nil {
		// the guest's default reservation page is now stale
		_ = s.cache.Del(ctx, reservationsKey(in.GuestID, defaultPageSize))
	}
	return rv, nil
}

func parseStayDates(start, end string) (time.Time, time.Time, error) {
	s, err := time.Parse("2006-01-02", start)
	if err != nil {
		return time.Time{}, time.Time{}, &ValidationError{msg: "start_date is missing or invalid"}
	}
	e, err := time.Parse("2006-01-02", end)
	if err != nil {
		return time.Time{}, time.Time{}, &ValidationError{msg: "end_date is missing or invalid"}
	}
	if !e.After(s) {
		return time.Time{}, time.Time{}, &ValidationError{msg: "end_date must be after start_date"}
	}
	return s, e, nil
}

func (s *CommandService) AddReview(ctx context.Context, in AddReviewInput, propertyID, guestID int64) (domain.Review, error) {
	if err := s.validate.Struct(in); err != nil {
		return domain.Review{}, validationErr(err)
	}
	return s.repo.CreateReview(ctx, domain.Review{
		ReservationID: in.ReservationID,
		PropertyID:    propertyID,
		GuestID:       guestID,
		Rating:        in.Rating,
		Message:       in.Message,
	})
}
