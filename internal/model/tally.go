package model

// Tally is the persisted downvote record for a game's current prompt.
// PromptCID pins the votes to one prompt: a new turn means a new prompt,
// which invalidates all previous votes.
type Tally struct {
	GameID    string   `json:"gameId" bson:"_id"`
	PromptCID string   `json:"promptCid" bson:"promptCid"`
	Votes     []string `json:"votes" bson:"votes"`
}

// TallyChanged is published whenever a game's downvote tally is written.
// The downvote monitor consumes it outside the command path.
type TallyChanged struct {
	GameID        string `json:"gameId"`
	PromptCID     string `json:"promptCid"`
	PreviousCID   string `json:"previousCid"`
	PreviousVotes int    `json:"previousVotes"`
	NewVotes      int    `json:"newVotes"`
}

// ProfileChanged is published when a user edits their name or avatar so
// their player records across games can be brought up to date.
type ProfileChanged struct {
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}
