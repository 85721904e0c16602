package cookies

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/dbx"
)

// SQLiteRepository stores cookies in the client's SQLite file. Expiry is
// kept as Unix seconds, 0 for session cookies.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository binds the repository to db; the cookies table must
// exist, see client.InitDatabase.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) List(ctx context.Context, origin string) ([]models.StoredCookie, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, value, expires_at FROM cookies WHERE origin = ? ORDER BY name`, origin)
	if err != nil {
		return nil, fmt.Errorf("failed to list cookies[%s]: %w", origin, err)
	}
	defer rows.Close()

	var result []models.StoredCookie
	for rows.Next() {
		c := models.StoredCookie{Origin: origin}
		var expiresAt int64
		if err := rows.Scan(&c.Name, &c.Value, &expiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan cookie row: %w", err)
		}
		if expiresAt > 0 {
			c.ExpiresAt = time.Unix(expiresAt, 0).UTC()
		}
		result = append(result, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cookie rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, c models.StoredCookie) error {
	var expiresAt int64
	if !c.ExpiresAt.IsZero() {
		expiresAt = c.ExpiresAt.Unix()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cookies (origin, name, value, expires_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(origin, name) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`, c.Origin, c.Name, c.Value, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to set cookie[%s]: %w", c.Name, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, origin, name string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cookies WHERE origin = ? AND name = ?`, origin, name)
	if err != nil {
		return fmt.Errorf("failed to delete cookie[%s]: %w", name, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cookies`)
	if err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	return nil
}
