package service

import (
	"context"
	"encoding/json"
	"log"

	"promptparty/internal/model"
	"promptparty/internal/repository"
)

// DownvoteMonitor watches tally-change events and resets the current
// turn once enough of the table has vetoed the prompt. It runs outside
// the command path: every event is an independent activation.
type DownvoteMonitor struct {
	games    repository.GameRepo
	players  repository.PlayerRepo
	cards    repository.CardRepo
	pools    repository.PoolRepo
	tallies  repository.TallyRepo
	tx       repository.TxRunner
	notifier Notifier
}

func NewDownvoteMonitor(
	games repository.GameRepo,
	players repository.PlayerRepo,
	cards repository.CardRepo,
	pools repository.PoolRepo,
	tallies repository.TallyRepo,
	tx repository.TxRunner,
) *DownvoteMonitor {
	return &DownvoteMonitor{
		games:   games,
		players: players,
		cards:   cards,
		pools:   pools,
		tallies: tallies,
		tx:      tx,
	}
}

// SetNotifier sets the push collaborator.
func (m *DownvoteMonitor) SetNotifier(n Notifier) {
	m.notifier = n
}

// HandleRaw adapts a pub/sub payload into HandleTallyChanged.
func (m *DownvoteMonitor) HandleRaw(ctx context.Context, payload []byte) error {
	var ev model.TallyChanged
	if err := json.Unmarshal(payload, &ev); err != nil {
		return err
	}
	return m.HandleTallyChanged(ctx, ev)
}

// HandleTallyChanged applies the veto rule: votes must have grown, must
// belong to the turn's current prompt and must reach floor(2/3 of the
// active player count). The prompt card id is the turn's identity here;
// a vote landing after the turn already rolled over is ignored.
func (m *DownvoteMonitor) HandleTallyChanged(ctx context.Context, ev model.TallyChanged) error {
	if ev.NewVotes <= ev.PreviousVotes {
		return nil
	}
	if ev.PreviousCID != "" && ev.PreviousCID != ev.PromptCID {
		// The tally was rebuilt for a new prompt between snapshots.
		return nil
	}

	var (
		reset   bool
		judgeID string
		prompt  string
		round   int
	)
	err := m.tx.RunAtomic(ctx, func(ctx context.Context) error {
		reset = false
		game, err := m.games.GetByID(ctx, ev.GameID)
		if err != nil {
			return err
		}
		if game == nil || game.Turn == nil || game.State != model.GameStateInProgress {
			return nil
		}
		if game.Turn.PromptCard.CID != ev.PromptCID {
			return nil
		}

		players, err := m.players.List(ctx, ev.GameID)
		if err != nil {
			return err
		}
		threshold := 2 * activeCount(players) / 3
		if ev.NewVotes < threshold {
			return nil
		}

		log.Printf("downvote threshold met for game %s, resetting turn", ev.GameID)

		// The vetoed prompt is discarded for good.
		if err := m.tallies.ArchiveVetoed(ctx, ev.GameID, game.Turn.PromptCard); err != nil {
			return err
		}

		// Everyone gets their submitted cards back, except the bot, whose
		// cards came straight from the pool.
		for pid, cards := range game.Turn.Responses {
			if pid == model.RandoCardrissian {
				continue
			}
			for _, p := range players {
				if p.ID != pid {
					continue
				}
				p.Hand = append(p.Hand, cards...)
				if err := m.players.Update(ctx, p); err != nil {
					return err
				}
				break
			}
		}

		pool, err := m.pools.Get(ctx, ev.GameID)
		if err != nil {
			return err
		}
		if pool == nil {
			return nil
		}
		newPrompt, err := drawAllowedPrompt(ctx, m.cards, game, pool)
		if err != nil {
			return err
		}

		// Same judge, fresh prompt, clean slate. No round increment.
		turn := &model.Turn{
			JudgeID:    game.Turn.JudgeID,
			PromptCard: *newPrompt,
			Responses:  map[string][]model.ResponseCard{},
			Winner:     game.Turn.Winner,
		}
		if hasBot(players) {
			botCards, err := dealBotResponses(ctx, m.cards, pool, newPrompt)
			if err != nil {
				return err
			}
			turn.Responses[model.RandoCardrissian] = botCards
		}
		game.Turn = turn

		if err := m.pools.Update(ctx, pool); err != nil {
			return err
		}
		if err := m.tallies.Reset(ctx, ev.GameID, newPrompt.CID); err != nil {
			return err
		}
		if err := m.games.Update(ctx, game); err != nil {
			return err
		}

		reset = true
		judgeID = turn.JudgeID
		prompt = newPrompt.Text
		round = game.Round
		return nil
	})
	if err != nil {
		return err
	}

	if reset && m.notifier != nil {
		m.notifier.NotifyGame(ev.GameID, model.EventTurnReset, model.RoundPayload{
			GameID:  ev.GameID,
			Round:   round,
			JudgeID: judgeID,
			Prompt:  prompt,
		})
	}
	return nil
}
