package main

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"promptparty/internal/model"
	"promptparty/internal/repository"
)

// seedSet is the on-disk JSON format for a card set.
type seedSet struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Prompts []struct {
		Text    string `json:"text"`
		Special string `json:"special,omitempty"`
	} `json:"prompts"`
	Responses []string `json:"responses"`
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: seed <cardset.json> [<cardset.json> ...]")
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	mongoDB := os.Getenv("MONGO_DB")
	if mongoDB == "" {
		mongoDB = "promptparty"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	cards := repository.NewCardRepo(client.Database(mongoDB))

	for _, path := range os.Args[1:] {
		if err := seedFile(ctx, cards, path); err != nil {
			log.Fatalf("Failed to seed %s: %v", path, err)
		}
	}
}

func seedFile(ctx context.Context, cards repository.CardRepo, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var in seedSet
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if in.ID == "" || in.Name == "" {
		return fmt.Errorf("%s: card set needs an id and a name", path)
	}

	prompts := make([]model.PromptCard, 0, len(in.Prompts))
	promptIndexes := make([]string, 0, len(in.Prompts))
	for _, p := range in.Prompts {
		special, _ := model.ParseSpecial(p.Special)
		card := model.PromptCard{
			CID:     cardID(in.ID, "prompt", p.Text),
			Text:    p.Text,
			Special: string(special),
			Set:     in.Name,
			Source:  in.ID,
		}
		prompts = append(prompts, card)
		promptIndexes = append(promptIndexes, card.CID)
	}

	responses := make([]model.ResponseCard, 0, len(in.Responses))
	responseIndexes := make([]string, 0, len(in.Responses))
	for _, text := range in.Responses {
		card := model.ResponseCard{
			CID:    cardID(in.ID, "response", text),
			Text:   text,
			Set:    in.Name,
			Source: in.ID,
		}
		responses = append(responses, card)
		responseIndexes = append(responseIndexes, card.CID)
	}

	set := &model.CardSet{
		ID:              in.ID,
		Name:            in.Name,
		Prompts:         len(prompts),
		PromptIndexes:   promptIndexes,
		Responses:       len(responses),
		ResponseIndexes: responseIndexes,
	}

	if err := cards.PutCardSet(ctx, set); err != nil {
		return err
	}
	if len(prompts) > 0 {
		if err := cards.PutPromptCards(ctx, prompts); err != nil {
			return err
		}
	}
	if len(responses) > 0 {
		if err := cards.PutResponseCards(ctx, responses); err != nil {
			return err
		}
	}

	fmt.Printf("Seeded card set %q: %d prompts, %d responses\n", in.Name, len(prompts), len(responses))
	return nil
}

// cardID derives a stable id from the card's content so re-seeding the
// same file never mints new ids.
func cardID(setID, kind, text string) string {
	sum := sha1.Sum([]byte(setID + "|" + kind + "|" + text))
	return hex.EncodeToString(sum[:])[:16]
}
