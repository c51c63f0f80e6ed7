package model

import "time"

type GameState string

const (
	GameStateWaitingRoom GameState = "waitingRoom"
	GameStateStarting    GameState = "starting"
	GameStateInProgress  GameState = "inProgress"
	GameStateCompleted   GameState = "completed"
)

// stateOrder fixes the only legal lifecycle:
// waitingRoom -> starting -> inProgress -> completed.
var stateOrder = map[GameState]int{
	GameStateWaitingRoom: 0,
	GameStateStarting:    1,
	GameStateInProgress:  2,
	GameStateCompleted:   3,
}

type GameSettings struct {
	PrizesToWin       int  `json:"prizesToWin" bson:"prizesToWin"`
	PlayerLimit       int  `json:"playerLimit" bson:"playerLimit"`
	Pick2Enabled      bool `json:"pick2Enabled" bson:"pick2Enabled"`
	Draw2Pick3Enabled bool `json:"draw2Pick3Enabled" bson:"draw2Pick3Enabled"`
}

// DefaultGameSettings returns the settings a game gets when the caller
// does not override them. Both special prompt kinds are in play by
// default.
func DefaultGameSettings() GameSettings {
	return GameSettings{
		PrizesToWin:       5,
		Pick2Enabled:      true,
		Draw2Pick3Enabled: true,
	}
}

type Game struct {
	ID            string       `json:"id" bson:"_id"`
	GID           string       `json:"gid" bson:"gid"` // invite code
	OwnerID       string       `json:"ownerId" bson:"ownerId"`
	State         GameState    `json:"state" bson:"state"`
	Round         int          `json:"round" bson:"round"`
	Settings      GameSettings `json:"settings" bson:"settings"`
	JudgeRotation []string     `json:"judgeRotation,omitempty" bson:"judgeRotation,omitempty"`
	CardSets      []string     `json:"cardSets" bson:"cardSets"`
	Turn          *Turn        `json:"turn,omitempty" bson:"turn,omitempty"`
	WinnerID      string       `json:"winner,omitempty" bson:"winner,omitempty"`
	CreatedAt     time.Time    `json:"createdAt" bson:"createdAt"`
}

// CanTransitionTo reports whether moving to next is a single forward step.
func (g *Game) CanTransitionTo(next GameState) bool {
	cur, ok := stateOrder[g.State]
	if !ok {
		return false
	}
	n, ok := stateOrder[next]
	if !ok {
		return false
	}
	return n == cur+1
}

// NextJudge returns the rotation entry following judgeID, wrapping to the
// head of the rotation. Falls back to the head when judgeID is no longer
// part of the rotation (the judge left mid-turn).
func (g *Game) NextJudge(judgeID string) string {
	if len(g.JudgeRotation) == 0 {
		return ""
	}
	for i, id := range g.JudgeRotation {
		if id == judgeID {
			return g.JudgeRotation[(i+1)%len(g.JudgeRotation)]
		}
	}
	return g.JudgeRotation[0]
}
