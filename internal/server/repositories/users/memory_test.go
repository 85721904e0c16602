package users

import (
	"context"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	email := gofakeit.Email()

	u, err := r.Create(ctx, email, []byte("hash"))
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	byEmail, err := r.GetByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, email, byID.Email)
}

func TestMemoryRepository_Duplicate(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	_, err := r.Create(ctx, "a@b.com", []byte("h"))
	require.NoError(t, err)

	_, err = r.Create(ctx, "a@b.com", []byte("h2"))
	require.ErrorIs(t, err, common.ErrAlreadyExists)

	// stored as-is, so a different case is a different account
	_, err = r.Create(ctx, "A@b.com", []byte("h3"))
	require.NoError(t, err)
}

func TestMemoryRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	_, err := r.GetByEmail(ctx, "nobody@b.com")
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = r.GetByID(ctx, "nope")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	u, err := r.Create(ctx, "a@b.com", []byte("hash"))
	require.NoError(t, err)
	u.PasswordHash[0] = 'X'

	again, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", string(again.PasswordHash))
}

func TestMemoryRepository_ConcurrentCreateSameEmail(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	const n = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Create(ctx, "race@b.com", []byte("h")); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
}

func TestMemoryRepository_Delete(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	email := gofakeit.Email()

	u, err := r.Create(ctx, email, []byte("h"))
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, u.ID))
	require.NoError(t, r.Delete(ctx, u.ID), "deleting twice is fine")

	_, err = r.GetByID(ctx, u.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)

	// the email is free again
	_, err = r.Create(ctx, email, []byte("h2"))
	require.NoError(t, err)
}
