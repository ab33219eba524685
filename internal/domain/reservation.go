package domain

import "time"

// Reservation books one Property for one guest User between two dates.
// This layer does no overlap checking.
type Reservation struct {
	ID         int64
	PropertyID int64
	GuestID    int64
	StartDate  time.Time
	EndDate    time.Time
}

// ReservationListing is a row of a guest's reservation list: the stay
// dates joined with the reserved property and its average rating.
type ReservationListing struct {
	ReservationID int64
	StartDate     time.Time
	EndDate       time.Time
	Property
	AverageRating float64
}

// Review is a guest's rating of a completed stay. It references the
// Reservation, and through it the Property and guest.
type Review struct {
	ID            int64
	ReservationID int64
	PropertyID    int64
	GuestID       int64
	Rating        int // 1..5
	Message       string
}
