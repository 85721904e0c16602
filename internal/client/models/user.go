// Package models holds the client-side data types.
package models

import "time"

// User is the account as the server reports it.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
