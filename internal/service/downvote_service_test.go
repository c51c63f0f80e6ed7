package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"promptparty/internal/model"
)

// seatSix grows the seeded table to six active players so the veto
// threshold lands at floor(2/3 * 6) = 4.
func seatSix(e *engine) *model.Game {
	game := seatTable(e, 5)
	ctx := context.Background()
	for i, id := range []string{"dave", "erin", "frank"} {
		e.players.Upsert(ctx, &model.Player{
			ID:       id,
			GameID:   game.ID,
			Name:     id,
			Hand:     e.handCards(30+i*2, 32+i*2),
			JoinedAt: time.Now(),
		})
		game.JudgeRotation = append(game.JudgeRotation, id)
	}
	return game
}

func TestDownvoteMonitorIgnoresShrinkingTally(t *testing.T) {
	e := newEngine()
	seatSix(e)

	ev := model.TallyChanged{GameID: "g1", PromptCID: "p000", PreviousCID: "p000", PreviousVotes: 4, NewVotes: 4}
	if err := e.monitor.HandleTallyChanged(context.Background(), ev); err != nil {
		t.Fatalf("HandleTallyChanged: %v", err)
	}
	if got := e.notifier.count(model.EventTurnReset); got != 0 {
		t.Fatalf("a non-growing tally must not reset the turn, got %d events", got)
	}
}

func TestDownvoteMonitorBelowThreshold(t *testing.T) {
	e := newEngine()
	seatSix(e)

	ev := model.TallyChanged{GameID: "g1", PromptCID: "p000", PreviousCID: "p000", PreviousVotes: 2, NewVotes: 3}
	if err := e.monitor.HandleTallyChanged(context.Background(), ev); err != nil {
		t.Fatalf("HandleTallyChanged: %v", err)
	}

	game, _ := e.games.GetByID(context.Background(), "g1")
	if game.Turn.PromptCard.CID != "p000" {
		t.Fatalf("prompt should survive below threshold, got %s", game.Turn.PromptCard.CID)
	}
}

func TestDownvoteMonitorResetsTurnAtThreshold(t *testing.T) {
	e := newEngine()
	game := seatSix(e)
	ctx := context.Background()

	// bob already played into the vetoed turn; his card must come back.
	e.turnSvc.SubmitResponses(ctx, "g1", "bob", []string{"r010"})
	roundBefore := game.Round

	ev := model.TallyChanged{GameID: "g1", PromptCID: "p000", PreviousCID: "p000", PreviousVotes: 3, NewVotes: 4}
	if err := e.monitor.HandleTallyChanged(ctx, ev); err != nil {
		t.Fatalf("HandleTallyChanged: %v", err)
	}

	game, _ = e.games.GetByID(ctx, "g1")
	if game.Turn.PromptCard.CID == "p000" {
		t.Fatal("the vetoed prompt should be replaced")
	}
	if game.Turn.JudgeID != "alice" {
		t.Fatalf("the judge keeps the turn through a veto, got %s", game.Turn.JudgeID)
	}
	if game.Round != roundBefore {
		t.Fatalf("a veto does not advance the round, got %d", game.Round)
	}
	if len(game.Turn.Responses) != 0 {
		t.Fatalf("the reset turn starts with a clean slate, got %+v", game.Turn.Responses)
	}

	bob, _ := e.players.Get(ctx, "g1", "bob")
	if !bob.HoldsAll([]string{"r010"}) {
		t.Fatal("bob's submitted card should return to his hand")
	}

	if len(e.tallies.vetoed) != 1 || e.tallies.vetoed[0].CID != "p000" {
		t.Fatalf("the vetoed prompt should be archived, got %+v", e.tallies.vetoed)
	}
	tally, _ := e.tallies.Get(ctx, "g1")
	if tally.PromptCID != game.Turn.PromptCard.CID || len(tally.Votes) != 0 {
		t.Fatalf("tally should restart for the new prompt, got %+v", tally)
	}
	if got := e.notifier.count(model.EventTurnReset); got != 1 {
		t.Fatalf("expected one turn-reset event, got %d", got)
	}
}

func TestDownvoteMonitorBotCardsStayOut(t *testing.T) {
	e := newEngine()
	game := seatSix(e)
	ctx := context.Background()

	e.players.Upsert(ctx, &model.Player{
		ID:                 model.RandoCardrissian,
		GameID:             "g1",
		Name:               "Rando Cardrissian",
		IsRandoCardrissian: true,
		JoinedAt:           time.Now(),
	})
	game.Turn.Responses[model.RandoCardrissian] = e.handCards(36, 37)

	// 7 active seats now: threshold floor(2/3 * 7) = 4.
	ev := model.TallyChanged{GameID: "g1", PromptCID: "p000", PreviousCID: "p000", PreviousVotes: 3, NewVotes: 4}
	if err := e.monitor.HandleTallyChanged(ctx, ev); err != nil {
		t.Fatalf("HandleTallyChanged: %v", err)
	}

	game, _ = e.games.GetByID(ctx, "g1")
	if game.Turn.PromptCard.CID == "p000" {
		t.Fatal("the turn should have reset")
	}
	bot, _ := e.players.Get(ctx, "g1", model.RandoCardrissian)
	if len(bot.Hand) != 0 {
		t.Fatalf("bot cards never return to a hand, got %d", len(bot.Hand))
	}
	// The bot plays again on the replacement prompt.
	if len(game.Turn.Responses[model.RandoCardrissian]) != 1 {
		t.Fatalf("the bot should re-enter the reset turn, got %+v", game.Turn.Responses)
	}
}

func TestDownvoteMonitorStalePromptIgnored(t *testing.T) {
	e := newEngine()
	seatSix(e)

	// The turn already rolled to a different prompt by the time the
	// event arrives.
	ev := model.TallyChanged{GameID: "g1", PromptCID: "p999", PreviousCID: "p999", PreviousVotes: 3, NewVotes: 6}
	if err := e.monitor.HandleTallyChanged(context.Background(), ev); err != nil {
		t.Fatalf("HandleTallyChanged: %v", err)
	}

	game, _ := e.games.GetByID(context.Background(), "g1")
	if game.Turn.PromptCard.CID != "p000" {
		t.Fatal("a stale event must not touch the current turn")
	}
	if got := e.notifier.count(model.EventTurnReset); got != 0 {
		t.Fatalf("no reset expected, got %d events", got)
	}
}

func TestDownvoteMonitorRebuiltTallyIgnored(t *testing.T) {
	e := newEngine()
	seatSix(e)

	// PreviousCID differing from PromptCID means the tally was rebuilt
	// between snapshots; the vote count is not comparable.
	ev := model.TallyChanged{GameID: "g1", PromptCID: "p000", PreviousCID: "p042", PreviousVotes: 0, NewVotes: 6}
	if err := e.monitor.HandleTallyChanged(context.Background(), ev); err != nil {
		t.Fatalf("HandleTallyChanged: %v", err)
	}

	game, _ := e.games.GetByID(context.Background(), "g1")
	if game.Turn.PromptCard.CID != "p000" {
		t.Fatal("a rebuilt tally must not trigger a veto")
	}
}

func TestDownvoteMonitorHandleRaw(t *testing.T) {
	e := newEngine()
	seatSix(e)

	payload, _ := json.Marshal(model.TallyChanged{
		GameID: "g1", PromptCID: "p000", PreviousCID: "p000", PreviousVotes: 3, NewVotes: 4,
	})
	if err := e.monitor.HandleRaw(context.Background(), payload); err != nil {
		t.Fatalf("HandleRaw: %v", err)
	}

	game, _ := e.games.GetByID(context.Background(), "g1")
	if game.Turn.PromptCard.CID == "p000" {
		t.Fatal("the wire payload should drive the same reset")
	}

	if err := e.monitor.HandleRaw(context.Background(), []byte("{not json")); err == nil {
		t.Fatal("malformed payloads should error")
	}
}

func TestVetoEndToEnd(t *testing.T) {
	e := newEngine()
	seatSix(e)
	ctx := context.Background()

	// Six players vote one by one; the monitor consumes each published
	// event the way the subscriber loop would.
	voters := []string{"bob", "carol", "dave", "erin", "frank"}
	for _, v := range voters {
		if err := e.turnSvc.DownvotePrompt(ctx, "g1", v); err != nil {
			t.Fatalf("%s vote: %v", v, err)
		}
		ev := e.publisher.events[len(e.publisher.events)-1].Payload.(*model.TallyChanged)
		if err := e.monitor.HandleTallyChanged(ctx, *ev); err != nil {
			t.Fatalf("monitor after %s: %v", v, err)
		}

		game, _ := e.games.GetByID(ctx, "g1")
		if game.Turn.PromptCard.CID != "p000" {
			// Threshold is 4: the reset must land on the fourth vote.
			if v != "erin" {
				t.Fatalf("reset landed on %s's vote, want erin's", v)
			}
			return
		}
	}
	t.Fatal("the veto never fired")
}
