package model

// EventKind labels a push notification sent to players over the hub.
type EventKind string

const (
	EventAllResponsesIn EventKind = "all_responses_in"
	EventNewRound       EventKind = "new_round"
	EventGameOver       EventKind = "game_over"
	EventTurnReset      EventKind = "turn_reset"
	EventWave           EventKind = "wave"
	EventPlayerJoined   EventKind = "player_joined"
	EventPlayerLeft     EventKind = "player_left"
	EventPlayerKicked   EventKind = "player_kicked"
	EventGameStarted    EventKind = "game_started"
)

// WavePayload accompanies EventWave.
type WavePayload struct {
	FromPlayerID string `json:"fromPlayerId"`
	FromName     string `json:"fromName"`
	Message      string `json:"message,omitempty"`
}

// RoundPayload accompanies EventNewRound and EventTurnReset.
type RoundPayload struct {
	GameID  string `json:"gameId"`
	Round   int    `json:"round"`
	JudgeID string `json:"judgeId"`
	Prompt  string `json:"prompt"`
}

// GameOverPayload accompanies EventGameOver.
type GameOverPayload struct {
	GameID     string `json:"gameId"`
	WinnerID   string `json:"winnerId"`
	WinnerName string `json:"winnerName"`
}
