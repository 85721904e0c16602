package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/users"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// MongoRepositoryManager vends MongoDB-backed repositories.
type MongoRepositoryManager struct {
	client *mongo.Client
	users  *users.MongoRepository
	tokens *refreshtokens.MongoRepository
}

// OpenMongo connects, pings and creates the indexes both collections need.
func OpenMongo(ctx context.Context, uri, database string) (*MongoRepositoryManager, error) {
	const op = "repomanager.OpenMongo"

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%s: connect: %w", op, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	db := client.Database(database)
	m := &MongoRepositoryManager{
		client: client,
		users:  users.NewMongoRepository(db),
		tokens: refreshtokens.NewMongoRepository(db),
	}

	if err := m.users.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := m.tokens.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return m, nil
}

func (m *MongoRepositoryManager) Users() users.Repository { return m.users }

func (m *MongoRepositoryManager) RefreshTokens() refreshtokens.Repository { return m.tokens }

// WithinTx runs fn without a session, since multi-document transactions
// require a replica set. Documents fn inserted are deleted again if it fails.
func (m *MongoRepositoryManager) WithinTx(ctx context.Context, fn TxFunc) error {
	return runCompensated(ctx, m.users, m.tokens, fn)
}

// Ping asks the primary.
func (m *MongoRepositoryManager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
