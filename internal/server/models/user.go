// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account row. PasswordHash is an argon2id PHC string.
type User struct {
	ID                string
	Email             string
	PasswordHash      string
	EmailVerified     bool
	VerificationToken string
	Attributes        map[string]string
	CreatedAt         time.Time
}
