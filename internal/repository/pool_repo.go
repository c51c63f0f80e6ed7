package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"promptparty/internal/model"
)

// PoolRepo persists each game's remaining card indexes. Draws are
// read-modify-write over the whole pool document and must run inside a
// TxRunner transaction so concurrent draws never overlap.
type PoolRepo interface {
	Seed(ctx context.Context, pool *model.CardPool) error
	Get(ctx context.Context, gameID string) (*model.CardPool, error)
	Update(ctx context.Context, pool *model.CardPool) error
}

type poolRepo struct {
	collection *mongo.Collection
}

func NewPoolRepo(db *mongo.Database) PoolRepo {
	return &poolRepo{collection: db.Collection("cardpools")}
}

func (r *poolRepo) Seed(ctx context.Context, pool *model.CardPool) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": pool.GameID}, pool, opts)
	return err
}

func (r *poolRepo) Get(ctx context.Context, gameID string) (*model.CardPool, error) {
	var pool model.CardPool
	err := r.collection.FindOne(ctx, bson.M{"_id": gameID}).Decode(&pool)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &pool, nil
}

func (r *poolRepo) Update(ctx context.Context, pool *model.CardPool) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": pool.GameID}, pool)
	return err
}
