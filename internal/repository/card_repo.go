package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"promptparty/internal/model"
)

// CardRepo is the read side of the immutable card catalog. Cards are
// looked up by their content-derived cid.
type CardRepo interface {
	GetCardSets(ctx context.Context, setIDs []string) ([]*model.CardSet, error)
	GetPromptCard(ctx context.Context, cid string) (*model.PromptCard, error)
	GetResponseCards(ctx context.Context, cids []string) ([]model.ResponseCard, error)
	PutCardSet(ctx context.Context, set *model.CardSet) error
	PutPromptCards(ctx context.Context, cards []model.PromptCard) error
	PutResponseCards(ctx context.Context, cards []model.ResponseCard) error
}

type cardRepo struct {
	sets      *mongo.Collection
	prompts   *mongo.Collection
	responses *mongo.Collection
}

func NewCardRepo(db *mongo.Database) CardRepo {
	return &cardRepo{
		sets:      db.Collection("cardsets"),
		prompts:   db.Collection("prompts"),
		responses: db.Collection("responses"),
	}
}

func (r *cardRepo) GetCardSets(ctx context.Context, setIDs []string) ([]*model.CardSet, error) {
	cursor, err := r.sets.Find(ctx, bson.M{"_id": bson.M{"$in": setIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sets []*model.CardSet
	if err := cursor.All(ctx, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

func (r *cardRepo) GetPromptCard(ctx context.Context, cid string) (*model.PromptCard, error) {
	var card model.PromptCard
	err := r.prompts.FindOne(ctx, bson.M{"cid": cid}).Decode(&card)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// GetResponseCards resolves cids to cards, preserving the order the cids
// were drawn in.
func (r *cardRepo) GetResponseCards(ctx context.Context, cids []string) ([]model.ResponseCard, error) {
	if len(cids) == 0 {
		return nil, nil
	}
	cursor, err := r.responses.Find(ctx, bson.M{"cid": bson.M{"$in": cids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var fetched []model.ResponseCard
	if err := cursor.All(ctx, &fetched); err != nil {
		return nil, err
	}

	byCID := make(map[string]model.ResponseCard, len(fetched))
	for _, c := range fetched {
		byCID[c.CID] = c
	}
	ordered := make([]model.ResponseCard, 0, len(cids))
	for _, cid := range cids {
		card, ok := byCID[cid]
		if !ok {
			return nil, fmt.Errorf("response card %s not in catalog", cid)
		}
		ordered = append(ordered, card)
	}
	return ordered, nil
}

func (r *cardRepo) PutCardSet(ctx context.Context, set *model.CardSet) error {
	_, err := r.sets.InsertOne(ctx, set)
	return err
}

func (r *cardRepo) PutPromptCards(ctx context.Context, cards []model.PromptCard) error {
	docs := make([]interface{}, len(cards))
	for i, c := range cards {
		docs[i] = c
	}
	_, err := r.prompts.InsertMany(ctx, docs)
	return err
}

func (r *cardRepo) PutResponseCards(ctx context.Context, cards []model.ResponseCard) error {
	docs := make([]interface{}, len(cards))
	for i, c := range cards {
		docs[i] = c
	}
	_, err := r.responses.InsertMany(ctx, docs)
	return err
}
