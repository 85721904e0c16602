package cookies

import (
	"context"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
)

// Repository keeps cookies that must outlive the process, keyed by origin
// and name.
type Repository interface {
	// List returns every cookie stored for origin.
	List(ctx context.Context, origin string) ([]models.StoredCookie, error)
	// Set inserts or replaces the cookie with the same origin and name.
	Set(ctx context.Context, c models.StoredCookie) error
	Delete(ctx context.Context, origin, name string) error
	Clear(ctx context.Context) error
}
