package model

import "testing"

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from GameState
		to   GameState
		want bool
	}{
		{GameStateWaitingRoom, GameStateStarting, true},
		{GameStateStarting, GameStateInProgress, true},
		{GameStateInProgress, GameStateCompleted, true},
		{GameStateWaitingRoom, GameStateInProgress, false},
		{GameStateStarting, GameStateWaitingRoom, false},
		{GameStateCompleted, GameStateWaitingRoom, false},
		{GameStateInProgress, GameStateInProgress, false},
		{GameState("bogus"), GameStateStarting, false},
		{GameStateWaitingRoom, GameState("bogus"), false},
	}

	for _, tt := range tests {
		g := &Game{State: tt.from}
		if got := g.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestNextJudge(t *testing.T) {
	g := &Game{JudgeRotation: []string{"a", "b", "c"}}

	tests := []struct {
		judge string
		want  string
	}{
		{"a", "b"},
		{"b", "c"},
		{"c", "a"}, // wraps
		{"gone", "a"},
	}

	for _, tt := range tests {
		if got := g.NextJudge(tt.judge); got != tt.want {
			t.Errorf("NextJudge(%q) = %q, want %q", tt.judge, got, tt.want)
		}
	}

	empty := &Game{}
	if got := empty.NextJudge("a"); got != "" {
		t.Errorf("NextJudge on an empty rotation = %q, want empty", got)
	}
}

func TestTurnHasResponse(t *testing.T) {
	var nilTurn *Turn
	if nilTurn.HasResponse("a") {
		t.Error("nil turn should have no responses")
	}

	turn := &Turn{Responses: map[string][]ResponseCard{"a": {{CID: "r1"}}}}
	if !turn.HasResponse("a") {
		t.Error("expected a's response to be found")
	}
	if turn.HasResponse("b") {
		t.Error("b never submitted")
	}
}
