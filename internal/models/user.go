package models

import "time"

// User represents a registered account in the catalog.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"` // Never expose this to the client
	PasswordSalt []byte    `json:"-"`
	MobileNumber string    `json:"mobileNumber"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Sanitized returns a copy of the user without credential material.
func (u User) Sanitized() User {
	u.PasswordHash = nil
	u.PasswordSalt = nil
	return u
}
