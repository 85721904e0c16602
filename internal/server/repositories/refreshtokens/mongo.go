package refreshtokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CollectionName is the MongoDB collection holding refresh token documents.
const CollectionName = "refresh_tokens"

type tokenDoc struct {
	Token     string    `bson:"token"`
	UserID    string    `bson:"user_id"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// MongoRepository stores one document per refresh token.
type MongoRepository struct {
	tokens *mongo.Collection
}

// NewMongoRepository binds the repository to db. Call EnsureIndexes once
// before use.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{tokens: db.Collection(CollectionName)}
}

// EnsureIndexes creates a unique index on token and a TTL index on
// expires_at so MongoDB purges expired records on its own.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	const op = "refreshtokens.mongo.EnsureIndexes"

	_, err := r.tokens.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, userID string, token string, expiresAt time.Time) error {
	const op = "refreshtokens.mongo.Create"

	doc := tokenDoc{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.tokens.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// FindValid filters on expires_at itself since the TTL monitor runs only
// about once a minute.
func (r *MongoRepository) FindValid(ctx context.Context, token string, now time.Time) (*models.RefreshToken, error) {
	const op = "refreshtokens.mongo.FindValid"

	filter := bson.D{
		{Key: "token", Value: token},
		{Key: "expires_at", Value: bson.D{{Key: "$gt", Value: now.UTC()}}},
	}

	var doc tokenDoc
	if err := r.tokens.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.RefreshToken{
		Token:     doc.Token,
		UserID:    doc.UserID,
		ExpiresAt: doc.ExpiresAt,
		CreatedAt: doc.CreatedAt,
	}, nil
}

func (r *MongoRepository) Delete(ctx context.Context, token string) error {
	const op = "refreshtokens.mongo.Delete"

	if _, err := r.tokens.DeleteOne(ctx, bson.D{{Key: "token", Value: token}}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *MongoRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const op = "refreshtokens.mongo.DeleteExpired"

	res, err := r.tokens.DeleteMany(ctx, bson.D{{Key: "expires_at", Value: bson.D{{Key: "$lte", Value: now.UTC()}}}})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return res.DeletedCount, nil
}
