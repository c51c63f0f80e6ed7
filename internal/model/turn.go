package model

// TurnWinner records who took the previous turn, carried on the next turn
// as historical reference for clients.
type TurnWinner struct {
	PlayerID           string         `json:"playerId" bson:"playerId"`
	PlayerName         string         `json:"playerName" bson:"playerName"`
	PlayerAvatarURL    string         `json:"playerAvatarUrl,omitempty" bson:"playerAvatarUrl,omitempty"`
	IsRandoCardrissian bool           `json:"isRandoCardrissian" bson:"isRandoCardrissian"`
	PromptCard         PromptCard     `json:"promptCard" bson:"promptCard"`
	Response           []ResponseCard `json:"response" bson:"response"`
}

type Turn struct {
	JudgeID    string                    `json:"judgeId" bson:"judgeId"`
	PromptCard PromptCard                `json:"promptCard" bson:"promptCard"`
	Responses  map[string][]ResponseCard `json:"responses" bson:"responses"`
	Downvotes  []string                  `json:"downvotes,omitempty" bson:"downvotes,omitempty"`
	Winner     *TurnWinner               `json:"winner,omitempty" bson:"winner,omitempty"`
}

// HasResponse reports whether playerID already submitted this turn.
func (t *Turn) HasResponse(playerID string) bool {
	if t == nil || t.Responses == nil {
		return false
	}
	_, ok := t.Responses[playerID]
	return ok
}
