package refreshtokens

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Runs only when SESSIONKEEPER_TEST_MONGO_URI points at a live server.
func TestMongoRepository_Integration(t *testing.T) {
	uri := os.Getenv("SESSIONKEEPER_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SESSIONKEEPER_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	db := client.Database("sessionkeeper_test_" + gofakeit.LetterN(8))
	t.Cleanup(func() { _ = db.Drop(context.Background()) })

	r := NewMongoRepository(db)
	require.NoError(t, r.EnsureIndexes(ctx))

	now := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, r.Create(ctx, "u1", "tok", now.Add(time.Hour)))
	require.NoError(t, r.Create(ctx, "u1", "tok", now.Add(time.Hour)))

	got, err := r.FindValid(ctx, "tok", now)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	_, err = r.FindValid(ctx, "tok", now.Add(time.Hour))
	require.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, r.Delete(ctx, "tok"))
	require.NoError(t, r.Delete(ctx, "tok"))

	_, err = r.FindValid(ctx, "tok", now)
	require.ErrorIs(t, err, common.ErrorNotFound)
}
