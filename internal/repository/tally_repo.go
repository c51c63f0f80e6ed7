package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"promptparty/internal/model"
)

// TallyRepo persists the per-game downvote tally and the archive of
// vetoed prompt cards. A vetoed prompt is discarded for good; archiving
// keeps it around for posterity only.
type TallyRepo interface {
	Get(ctx context.Context, gameID string) (*model.Tally, error)
	Put(ctx context.Context, tally *model.Tally) error
	Reset(ctx context.Context, gameID, promptCID string) error
	ArchiveVetoed(ctx context.Context, gameID string, card model.PromptCard) error
}

type tallyRepo struct {
	tallies *mongo.Collection
	vetoed  *mongo.Collection
}

func NewTallyRepo(db *mongo.Database) TallyRepo {
	return &tallyRepo{
		tallies: db.Collection("tallies"),
		vetoed:  db.Collection("vetoed"),
	}
}

func (r *tallyRepo) Get(ctx context.Context, gameID string) (*model.Tally, error) {
	var tally model.Tally
	err := r.tallies.FindOne(ctx, bson.M{"_id": gameID}).Decode(&tally)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &tally, nil
}

func (r *tallyRepo) Put(ctx context.Context, tally *model.Tally) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.tallies.ReplaceOne(ctx, bson.M{"_id": tally.GameID}, tally, opts)
	return err
}

func (r *tallyRepo) Reset(ctx context.Context, gameID, promptCID string) error {
	return r.Put(ctx, &model.Tally{GameID: gameID, PromptCID: promptCID, Votes: []string{}})
}

func (r *tallyRepo) ArchiveVetoed(ctx context.Context, gameID string, card model.PromptCard) error {
	_, err := r.vetoed.InsertOne(ctx, bson.M{
		"gameId":   gameID,
		"card":     card,
		"vetoedAt": time.Now(),
	})
	return err
}
