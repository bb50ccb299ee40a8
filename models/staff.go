package models

import "time"

type StaffRole string

const (
	StaffRoleAdmin     StaffRole = "admin"
	StaffRoleOrganizer StaffRole = "organizer"
)

// StaffUser is an operations portal account. Only staff can mutate brackets;
// spectators read without authentication.
type StaffUser struct {
	ID           int       `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	FullName     string    `json:"full_name" db:"full_name"`
	Role         StaffRole `json:"role" db:"role"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
