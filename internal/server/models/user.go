// Package models holds the server's persisted entities.
package models

import "time"

// User is a registered account. Email is unique and compared exactly as
// stored. Users are never modified after creation.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}
