package model

// CardPool holds a game's remaining card indexes. Cards are drawn by
// removing indexes off the front; a drawn index never re-enters the pool.
type CardPool struct {
	GameID    string   `json:"gameId" bson:"_id"`
	Prompts   []string `json:"prompts" bson:"prompts"`
	Responses []string `json:"responses" bson:"responses"`
}
