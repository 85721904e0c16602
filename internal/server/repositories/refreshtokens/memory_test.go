package refreshtokens

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_FindValidBoundary(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	exp := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, r.Create(ctx, "u1", "tok", exp))

	got, err := r.FindValid(ctx, "tok", exp.Add(-time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	_, err = r.FindValid(ctx, "tok", exp)
	require.ErrorIs(t, err, common.ErrorNotFound, "expiresAt == now is expired")

	_, err = r.FindValid(ctx, "missing", exp.Add(-time.Hour))
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_CreateDuplicateKeepsFirst(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	exp := time.Now().Add(time.Hour)

	require.NoError(t, r.Create(ctx, "u1", "tok", exp))
	require.NoError(t, r.Create(ctx, "u2", "tok", exp))

	got, err := r.FindValid(ctx, "tok", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, 1, r.Len())
}

func TestMemoryRepository_DeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	require.NoError(t, r.Create(ctx, "u1", "tok", time.Now().Add(time.Hour)))
	require.NoError(t, r.Delete(ctx, "tok"))
	require.NoError(t, r.Delete(ctx, "tok"))

	_, err := r.FindValid(ctx, "tok", time.Now())
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	now := time.Now()

	require.NoError(t, r.Create(ctx, "u1", "old", now.Add(-time.Minute)))
	require.NoError(t, r.Create(ctx, "u1", "edge", now))
	require.NoError(t, r.Create(ctx, "u1", "fresh", now.Add(time.Minute)))

	n, err := r.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 1, r.Len())
}
