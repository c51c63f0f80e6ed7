package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"promptparty/internal/model"
)

// PlayerRepo manages game-scoped player records. The same user has one
// record per game they belong to, keyed by gameId + playerId.
type PlayerRepo interface {
	Upsert(ctx context.Context, player *model.Player) error
	Get(ctx context.Context, gameID, playerID string) (*model.Player, error)
	List(ctx context.Context, gameID string) ([]*model.Player, error)
	Update(ctx context.Context, player *model.Player) error
	UpdateProfile(ctx context.Context, playerID, name, avatarURL string) error
}

type playerRepo struct {
	collection *mongo.Collection
}

func NewPlayerRepo(db *mongo.Database) PlayerRepo {
	return &playerRepo{collection: db.Collection("players")}
}

func (r *playerRepo) key(gameID, playerID string) bson.M {
	return bson.M{"gameId": gameID, "playerId": playerID}
}

func (r *playerRepo) Upsert(ctx context.Context, player *model.Player) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, r.key(player.GameID, player.ID), player, opts)
	return err
}

func (r *playerRepo) Get(ctx context.Context, gameID, playerID string) (*model.Player, error) {
	var player model.Player
	err := r.collection.FindOne(ctx, r.key(gameID, playerID)).Decode(&player)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &player, nil
}

func (r *playerRepo) List(ctx context.Context, gameID string) ([]*model.Player, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"gameId": gameID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var players []*model.Player
	if err := cursor.All(ctx, &players); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *playerRepo) Update(ctx context.Context, player *model.Player) error {
	_, err := r.collection.ReplaceOne(ctx, r.key(player.GameID, player.ID), player)
	return err
}

// UpdateProfile fans a profile edit out to every game-scoped record of
// that player.
func (r *playerRepo) UpdateProfile(ctx context.Context, playerID, name, avatarURL string) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"playerId": playerID},
		bson.M{"$set": bson.M{"name": name, "avatarUrl": avatarURL}},
	)
	return err
}
