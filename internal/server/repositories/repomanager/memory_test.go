package repomanager

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositoryManager_SharesStateAcrossTx(t *testing.T) {
	ctx := context.Background()
	var m RepositoryManager = NewMemoryRepositoryManager()

	var userID string
	err := m.WithinTx(ctx, func(ctx context.Context, u users.Repository, rt refreshtokens.Repository) error {
		created, err := u.Create(ctx, "a@b.com", []byte("h"))
		if err != nil {
			return err
		}
		userID = created.ID
		return rt.Create(ctx, created.ID, "tok", time.Now().Add(time.Hour))
	})
	require.NoError(t, err)

	got, err := m.Users().GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, userID, got.ID)

	rec, err := m.RefreshTokens().FindValid(ctx, "tok", time.Now())
	require.NoError(t, err)
	assert.Equal(t, userID, rec.UserID)

	assert.NoError(t, m.Ping(ctx))
	assert.NoError(t, m.Close(ctx))
}
