// Package refreshtokens declares the server-side repository contract for
// refresh token records and its PostgreSQL, MongoDB and in-memory
// implementations.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
)

// Repository stores issued refresh tokens. Records are never updated in place.
type Repository interface {
	// Create stores a token for userID expiring at expiresAt. Storing a token
	// that already exists is not an error.
	Create(ctx context.Context, userID string, token string, expiresAt time.Time) error

	// FindValid returns the record only if it exists and now < ExpiresAt,
	// otherwise common.ErrorNotFound.
	FindValid(ctx context.Context, token string, now time.Time) (*models.RefreshToken, error)

	// Delete removes a token. Deleting a missing token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes every record with ExpiresAt <= now and reports
	// how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
