package domain

import "time"

// User is an account that can own properties and make reservations.
// Email is stored lowercase and is the unique lookup key.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
