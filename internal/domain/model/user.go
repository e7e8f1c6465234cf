package model

import "time"

// User represents an authenticated actor (buyer, seller, admin, rider).
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	CreatedAt    time.Time
}
