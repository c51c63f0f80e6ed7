package service

import (
	"context"

	"promptparty/internal/apperr"
	"promptparty/internal/deck"
	"promptparty/internal/model"
	"promptparty/internal/repository"
)

// drawAllowedPrompt pops prompt indexes off the pool until one satisfies
// the game's rule flags. Disallowed prompts are discarded, not returned.
// The caller persists the mutated pool within its transaction.
func drawAllowedPrompt(ctx context.Context, cards repository.CardRepo, game *model.Game, pool *model.CardPool) (*model.PromptCard, error) {
	for {
		cid, rest, ok := deck.DrawOne(pool.Prompts)
		if !ok {
			return nil, apperr.New(apperr.FailedPrecondition, "the prompt card pool is exhausted")
		}
		pool.Prompts = rest

		card, err := cards.GetPromptCard(ctx, cid)
		if err != nil {
			return nil, err
		}
		if card == nil {
			return nil, apperr.New(apperr.NotFound, "prompt card %s is not in the catalog", cid)
		}

		special, hasSpecial := model.ParseSpecial(card.Special)
		if hasSpecial {
			if special == model.SpecialPick2 && !game.Settings.Pick2Enabled {
				continue
			}
			if special == model.SpecialDraw2Pick3 && !game.Settings.Draw2Pick3Enabled {
				continue
			}
		}
		return card, nil
	}
}

// dealBotResponses draws Rando Cardrissian's response set for a prompt,
// sized by its special. The bot plays whatever it is dealt.
func dealBotResponses(ctx context.Context, cards repository.CardRepo, pool *model.CardPool, prompt *model.PromptCard) ([]model.ResponseCard, error) {
	n := model.ResponsesFor(prompt.Special)
	drawn, rest := deck.DrawN(pool.Responses, n)
	pool.Responses = rest
	return cards.GetResponseCards(ctx, drawn)
}

// hasBot reports whether Rando Cardrissian is part of the game.
func hasBot(players []*model.Player) bool {
	for _, p := range players {
		if p.IsRandoCardrissian {
			return true
		}
	}
	return false
}

func activeCount(players []*model.Player) int {
	n := 0
	for _, p := range players {
		if !p.IsInactive {
			n++
		}
	}
	return n
}
