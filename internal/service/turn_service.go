package service

import (
	"context"
	"log"

	"promptparty/internal/apperr"
	"promptparty/internal/cache"
	"promptparty/internal/deck"
	"promptparty/internal/model"
	"promptparty/internal/repository"
)

// TurnService is the turn engine: response submission, winner selection,
// downvote casting and the hand re-deal. Every multi-entity mutation
// runs inside one transaction so concurrent commands against the same
// game serialize on the documents they touch.
type TurnService struct {
	games       repository.GameRepo
	players     repository.PlayerRepo
	cards       repository.CardRepo
	pools       repository.PoolRepo
	tallies     repository.TallyRepo
	leaderboard cache.LeaderboardCache
	publisher   cache.Publisher
	tx          repository.TxRunner
	notifier    Notifier
}

func NewTurnService(
	games repository.GameRepo,
	players repository.PlayerRepo,
	cards repository.CardRepo,
	pools repository.PoolRepo,
	tallies repository.TallyRepo,
	leaderboard cache.LeaderboardCache,
	publisher cache.Publisher,
	tx repository.TxRunner,
) *TurnService {
	return &TurnService{
		games:       games,
		players:     players,
		cards:       cards,
		pools:       pools,
		tallies:     tallies,
		leaderboard: leaderboard,
		publisher:   publisher,
		tx:          tx,
	}
}

// SetNotifier sets the push collaborator.
func (s *TurnService) SetNotifier(n Notifier) {
	s.notifier = n
}

// SubmitResponses moves cards from the caller's hand into the current
// turn. When the submission completes the turn, the judge is notified --
// once, on exactly the submission that made it complete.
func (s *TurnService) SubmitResponses(ctx context.Context, gameID, playerID string, cardIDs []string) error {
	if gameID == "" {
		return apperr.New(apperr.InvalidArgument, "you must submit a valid game id")
	}
	if len(cardIDs) == 0 {
		return apperr.New(apperr.InvalidArgument, "you must submit valid responses")
	}

	var notifyJudge string
	err := s.tx.RunAtomic(ctx, func(ctx context.Context) error {
		notifyJudge = ""
		game, err := s.games.GetByID(ctx, gameID)
		if err != nil {
			return err
		}
		if game == nil {
			return apperr.New(apperr.NotFound, "unable to find the game for the provided id")
		}
		if game.State != model.GameStateInProgress || game.Turn == nil {
			return apperr.New(apperr.FailedPrecondition, "this game is not in progress")
		}
		if game.Turn.JudgeID == playerID {
			return apperr.New(apperr.FailedPrecondition, "the judge doesn't get to submit responses")
		}

		players, err := s.players.List(ctx, gameID)
		if err != nil {
			return err
		}
		var player *model.Player
		for _, p := range players {
			if p.ID == playerID {
				player = p
				break
			}
		}
		if player == nil {
			return apperr.New(apperr.NotFound, "unable to find this player in this game")
		}
		if !player.HoldsAll(cardIDs) {
			return apperr.New(apperr.InvalidArgument, "one or more submitted cards are not in your hand")
		}

		submitted := make([]model.ResponseCard, 0, len(cardIDs))
		newHand := make([]model.ResponseCard, 0, len(player.Hand))
		for _, c := range player.Hand {
			if containsCID(cardIDs, c.CID) {
				submitted = append(submitted, c)
			} else {
				newHand = append(newHand, c)
			}
		}
		player.Hand = newHand
		if err := s.players.Update(ctx, player); err != nil {
			return err
		}

		wasComplete := responsesComplete(game.Turn, players)
		if game.Turn.Responses == nil {
			game.Turn.Responses = map[string][]model.ResponseCard{}
		}
		game.Turn.Responses[playerID] = submitted
		if err := s.games.Update(ctx, game); err != nil {
			return err
		}

		if !wasComplete && responsesComplete(game.Turn, players) {
			notifyJudge = game.Turn.JudgeID
		}
		return nil
	})
	if err != nil {
		return err
	}

	if notifyJudge != "" && s.notifier != nil {
		log.Printf("all responses are in for game %s, notifying the judge", gameID)
		s.notifier.Notify(gameID, []string{notifyJudge}, model.EventAllResponsesIn, map[string]string{"gameId": gameID})
	}
	return nil
}

// PickWinner closes the current turn: records the winner, awards the
// prompt as a prize and either completes the game or rolls the table
// into the next turn.
func (s *TurnService) PickWinner(ctx context.Context, gameID, judgeID, winningPlayerID string) error {
	if gameID == "" {
		return apperr.New(apperr.InvalidArgument, "you must submit a valid game id")
	}
	if winningPlayerID == "" {
		return apperr.New(apperr.InvalidArgument, "you must submit a valid player id")
	}

	var (
		completed  bool
		botWinner  bool
		winnerName string
		newRound   int
		newJudge   string
		newPrompt  string
	)
	err := s.tx.RunAtomic(ctx, func(ctx context.Context) error {
		game, err := s.games.GetByID(ctx, gameID)
		if err != nil {
			return err
		}
		if game == nil {
			return apperr.New(apperr.NotFound, "unable to find a game for %s", gameID)
		}
		if game.State != model.GameStateInProgress || game.Turn == nil {
			return apperr.New(apperr.FailedPrecondition, "this game is not in progress, cannot pick a winner")
		}
		if game.Turn.JudgeID != judgeID {
			return apperr.New(apperr.PermissionDenied, "only the judge can pick a winner for the turn")
		}

		players, err := s.players.List(ctx, gameID)
		if err != nil {
			return err
		}
		if len(players) == 0 {
			return apperr.New(apperr.NotFound, "no players found for this game")
		}
		var winner *model.Player
		for _, p := range players {
			if p.ID == winningPlayerID {
				winner = p
				break
			}
		}
		if winner == nil {
			return apperr.New(apperr.InvalidArgument, "no player found for that id")
		}
		response, ok := game.Turn.Responses[winningPlayerID]
		if !ok {
			return apperr.New(apperr.InvalidArgument, "couldn't find that player's response")
		}

		turnWinner := &model.TurnWinner{
			PlayerID:           winner.ID,
			PlayerName:         winner.Name,
			PlayerAvatarURL:    winner.AvatarURL,
			IsRandoCardrissian: winner.IsRandoCardrissian,
			PromptCard:         game.Turn.PromptCard,
			Response:           response,
		}
		winnerName = winner.Name
		botWinner = winner.IsRandoCardrissian

		// Award the closed turn's prompt.
		previousPrompt := game.Turn.PromptCard
		if !winner.IsRandoCardrissian {
			winner.Prizes = append(winner.Prizes, previousPrompt)
			if err := s.players.Update(ctx, winner); err != nil {
				return err
			}
		}

		// The game ends on the exact call that fills a prize list; no new
		// turn is generated once somebody has won.
		for _, p := range players {
			if p.IsRandoCardrissian {
				continue
			}
			if len(p.Prizes) >= game.Settings.PrizesToWin {
				completed = true
				game.WinnerID = p.ID
				game.State = model.GameStateCompleted
				game.Turn.Winner = turnWinner
				return s.games.Update(ctx, game)
			}
		}

		nextJudge := game.NextJudge(game.Turn.JudgeID)

		pool, err := s.pools.Get(ctx, gameID)
		if err != nil {
			return err
		}
		if pool == nil {
			return apperr.New(apperr.NotFound, "no card pool for game %s", gameID)
		}
		prompt, err := drawAllowedPrompt(ctx, s.cards, game, pool)
		if err != nil {
			return err
		}

		turn := &model.Turn{
			JudgeID:    nextJudge,
			PromptCard: *prompt,
			Responses:  map[string][]model.ResponseCard{},
			Winner:     turnWinner,
		}

		// Replenish hands: one card back, another if the closed prompt was
		// PICK 2, two more if the new one is DRAW 2, PICK 3.
		dealCount := 1
		if special, ok := model.ParseSpecial(previousPrompt.Special); ok && special == model.SpecialPick2 {
			dealCount++
		}
		if special, ok := model.ParseSpecial(prompt.Special); ok && special == model.SpecialDraw2Pick3 {
			dealCount += 2
		}
		for _, p := range players {
			if p.IsRandoCardrissian || p.IsInactive || p.ID == game.Turn.JudgeID {
				continue
			}
			drawn, rest := deck.DrawN(pool.Responses, dealCount)
			pool.Responses = rest
			dealt, err := s.cards.GetResponseCards(ctx, drawn)
			if err != nil {
				return err
			}
			p.Hand = append(p.Hand, dealt...)
			if err := s.players.Update(ctx, p); err != nil {
				return err
			}
		}

		if hasBot(players) {
			botCards, err := dealBotResponses(ctx, s.cards, pool, prompt)
			if err != nil {
				return err
			}
			turn.Responses[model.RandoCardrissian] = botCards
		}

		game.Turn = turn
		game.Round++
		newRound = game.Round
		newJudge = nextJudge
		newPrompt = prompt.Text

		if err := s.pools.Update(ctx, pool); err != nil {
			return err
		}
		if err := s.tallies.Reset(ctx, gameID, prompt.CID); err != nil {
			return err
		}
		return s.games.Update(ctx, game)
	})
	if err != nil {
		return err
	}

	if !botWinner {
		if err := s.leaderboard.AddPrize(ctx, gameID, winningPlayerID); err != nil {
			log.Printf("failed to update prize leaderboard for game %s: %v", gameID, err)
		}
	}

	if s.notifier == nil {
		return nil
	}
	if completed {
		s.notifier.NotifyGame(gameID, model.EventGameOver, model.GameOverPayload{
			GameID:     gameID,
			WinnerID:   winningPlayerID,
			WinnerName: winnerName,
		})
	} else {
		s.notifier.NotifyGame(gameID, model.EventNewRound, model.RoundPayload{
			GameID:  gameID,
			Round:   newRound,
			JudgeID: newJudge,
			Prompt:  newPrompt,
		})
	}
	return nil
}

// ReDealHand trades one of the caller's prizes for a fresh 10-card hand.
func (s *TurnService) ReDealHand(ctx context.Context, gameID, playerID string) error {
	if gameID == "" {
		return apperr.New(apperr.InvalidArgument, "please submit a valid game to re-deal")
	}

	return s.tx.RunAtomic(ctx, func(ctx context.Context) error {
		game, err := s.games.GetByID(ctx, gameID)
		if err != nil {
			return err
		}
		if game == nil {
			return apperr.New(apperr.NotFound, "please submit a valid game to re-deal")
		}
		if game.State != model.GameStateInProgress {
			return apperr.New(apperr.FailedPrecondition, "this game is not in progress")
		}
		player, err := s.players.Get(ctx, gameID, playerID)
		if err != nil {
			return err
		}
		if player == nil {
			return apperr.New(apperr.NotFound, "unable to find you as a valid player for this game")
		}
		if len(player.Prizes) == 0 {
			return apperr.New(apperr.FailedPrecondition, "you don't have enough prizes to re-deal your hand")
		}

		pool, err := s.pools.Get(ctx, gameID)
		if err != nil {
			return err
		}
		if pool == nil {
			return apperr.New(apperr.NotFound, "no card pool for game %s", gameID)
		}
		drawn, rest := deck.DrawN(pool.Responses, 10)
		pool.Responses = rest
		hand, err := s.cards.GetResponseCards(ctx, drawn)
		if err != nil {
			return err
		}

		player.Prizes = player.Prizes[:len(player.Prizes)-1]
		player.Hand = hand
		if err := s.players.Update(ctx, player); err != nil {
			return err
		}
		return s.pools.Update(ctx, pool)
	})
}

// DownvotePrompt records the caller's vote against the current prompt
// and publishes the tally change for the downvote monitor to act on.
func (s *TurnService) DownvotePrompt(ctx context.Context, gameID, playerID string) error {
	if gameID == "" {
		return apperr.New(apperr.InvalidArgument, "you must submit a valid game id")
	}

	var ev *model.TallyChanged
	err := s.tx.RunAtomic(ctx, func(ctx context.Context) error {
		ev = nil
		game, err := s.games.GetByID(ctx, gameID)
		if err != nil {
			return err
		}
		if game == nil {
			return apperr.New(apperr.NotFound, "unable to find a game for %s", gameID)
		}
		if game.State != model.GameStateInProgress || game.Turn == nil {
			return apperr.New(apperr.FailedPrecondition, "this game is not in progress")
		}
		player, err := s.players.Get(ctx, gameID, playerID)
		if err != nil {
			return err
		}
		if player == nil || player.IsInactive {
			return apperr.New(apperr.NotFound, "unable to find this player in this game")
		}

		promptCID := game.Turn.PromptCard.CID
		tally, err := s.tallies.Get(ctx, gameID)
		if err != nil {
			return err
		}
		previousCID := promptCID
		if tally != nil {
			previousCID = tally.PromptCID
		}
		if tally == nil || tally.PromptCID != promptCID {
			// Stale votes belong to an already-replaced prompt.
			tally = &model.Tally{GameID: gameID, PromptCID: promptCID, Votes: []string{}}
		}

		previousVotes := len(tally.Votes)
		for _, v := range tally.Votes {
			if v == playerID {
				return nil // already voted, nothing changes
			}
		}
		tally.Votes = append(tally.Votes, playerID)
		if err := s.tallies.Put(ctx, tally); err != nil {
			return err
		}

		game.Turn.Downvotes = tally.Votes
		if err := s.games.Update(ctx, game); err != nil {
			return err
		}

		ev = &model.TallyChanged{
			GameID:        gameID,
			PromptCID:     promptCID,
			PreviousCID:   previousCID,
			PreviousVotes: previousVotes,
			NewVotes:      len(tally.Votes),
		}
		return nil
	})
	if err != nil {
		return err
	}

	if ev != nil {
		if err := s.publisher.Publish(ctx, cache.ChannelTally, ev); err != nil {
			log.Printf("failed to publish tally change for game %s: %v", gameID, err)
		}
	}
	return nil
}

// responsesComplete reports whether every active, non-judge, non-bot
// player has an entry on the turn.
func responsesComplete(turn *model.Turn, players []*model.Player) bool {
	for _, p := range players {
		if p.IsRandoCardrissian || p.IsInactive || p.ID == turn.JudgeID {
			continue
		}
		if !turn.HasResponse(p.ID) {
			return false
		}
	}
	return true
}

func containsCID(cids []string, cid string) bool {
	for _, c := range cids {
		if c == cid {
			return true
		}
	}
	return false
}
