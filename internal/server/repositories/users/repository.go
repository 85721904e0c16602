// Package users declares the credential store contract for user accounts
// and its PostgreSQL, MongoDB and in-memory implementations.
package users

import (
	"context"

	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
)

// Repository persists user accounts.
type Repository interface {
	// Create inserts a user and returns it with ID and CreatedAt assigned.
	// A duplicate email yields common.ErrAlreadyExists.
	Create(ctx context.Context, email string, passwordHash []byte) (*models.User, error)

	// GetByEmail and GetByID return common.ErrorNotFound when absent.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)

	// Delete removes a user. Deleting a missing user is not an error.
	Delete(ctx context.Context, id string) error
}
