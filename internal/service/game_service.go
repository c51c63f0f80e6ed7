package service

import (
	"context"
	"crypto/rand"
	"log"
	"time"

	"github.com/google/uuid"

	"promptparty/internal/apperr"
	"promptparty/internal/cache"
	"promptparty/internal/deck"
	"promptparty/internal/model"
	"promptparty/internal/repository"
)

const defaultPlayerLimit = 30

// GameService owns the game lifecycle outside of turns: create, join,
// start, leave, kick and wave.
type GameService struct {
	games       repository.GameRepo
	players     repository.PlayerRepo
	cards       repository.CardRepo
	pools       repository.PoolRepo
	tallies     repository.TallyRepo
	users       repository.UserRepo
	gameCache   cache.GameCache
	leaderboard cache.LeaderboardCache
	publisher   cache.Publisher
	tx          repository.TxRunner
	notifier    Notifier
	rng         deck.Source
}

func NewGameService(
	games repository.GameRepo,
	players repository.PlayerRepo,
	cards repository.CardRepo,
	pools repository.PoolRepo,
	tallies repository.TallyRepo,
	users repository.UserRepo,
	gameCache cache.GameCache,
	leaderboard cache.LeaderboardCache,
	publisher cache.Publisher,
	tx repository.TxRunner,
	rng deck.Source,
) *GameService {
	return &GameService{
		games:       games,
		players:     players,
		cards:       cards,
		pools:       pools,
		tallies:     tallies,
		users:       users,
		gameCache:   gameCache,
		leaderboard: leaderboard,
		publisher:   publisher,
		tx:          tx,
		rng:         rng,
	}
}

// SetNotifier sets the push collaborator.
func (s *GameService) SetNotifier(n Notifier) {
	s.notifier = n
}

// CreateGame creates a waiting-room game owned by the caller, who also
// becomes its first player.
func (s *GameService) CreateGame(ctx context.Context, ownerID, ownerName, avatarURL string, settings model.GameSettings, cardSets []string) (*model.Game, error) {
	if len(cardSets) == 0 {
		return nil, apperr.New(apperr.InvalidArgument, "you must pick at least one card set")
	}
	if settings == (model.GameSettings{}) {
		settings = model.DefaultGameSettings()
	}
	if settings.PrizesToWin < 1 {
		return nil, apperr.New(apperr.InvalidArgument, "prizesToWin must be at least 1")
	}
	if settings.PlayerLimit <= 0 {
		settings.PlayerLimit = defaultPlayerLimit
	}

	sets, err := s.cards.GetCardSets(ctx, cardSets)
	if err != nil {
		return nil, err
	}
	if len(sets) != len(cardSets) {
		return nil, apperr.New(apperr.NotFound, "one or more card sets do not exist")
	}

	gid, err := s.generateGID(ctx)
	if err != nil {
		return nil, err
	}

	game := &model.Game{
		ID:        uuid.New().String(),
		GID:       gid,
		OwnerID:   ownerID,
		State:     model.GameStateWaitingRoom,
		Round:     0,
		Settings:  settings,
		CardSets:  cardSets,
		CreatedAt: time.Now(),
	}
	owner := &model.Player{
		ID:        ownerID,
		GameID:    game.ID,
		Name:      ownerName,
		AvatarURL: avatarURL,
		JoinedAt:  time.Now(),
	}

	err = s.tx.RunAtomic(ctx, func(ctx context.Context) error {
		if err := s.games.Create(ctx, game); err != nil {
			return err
		}
		return s.players.Upsert(ctx, owner)
	})
	if err != nil {
		return nil, err
	}

	meta := &cache.GameMeta{GameID: game.ID, State: game.State, PlayerLimit: settings.PlayerLimit}
	if err := s.gameCache.SetMeta(ctx, gid, meta); err != nil {
		log.Printf("failed to cache game %s meta: %v", game.ID, err)
	}
	return game, nil
}

// JoinGame adds a player to a game found by invite code or id. Joining
// an in-progress game deals the player a hand and appends them to the
// tail of the judge rotation.
func (s *GameService) JoinGame(ctx context.Context, code, playerID, name, avatarURL string) (*model.Game, error) {
	if code == "" {
		return nil, apperr.New(apperr.InvalidArgument, "you must specify a valid game code or id")
	}
	if name == "" {
		return nil, apperr.New(apperr.InvalidArgument, "you must send a valid name to join with")
	}

	game, err := s.findGame(ctx, code)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, apperr.New(apperr.NotFound, "couldn't find a game for the code %s", code)
	}

	switch game.State {
	case model.GameStateStarting:
		return nil, apperr.New(apperr.Cancelled, "this game is currently starting, try again shortly")
	case model.GameStateCompleted:
		return nil, apperr.New(apperr.FailedPrecondition, "this game is already completed")
	}

	err = s.tx.RunAtomic(ctx, func(ctx context.Context) error {
		g, err := s.games.GetByID(ctx, game.ID)
		if err != nil {
			return err
		}
		game = g

		players, err := s.players.List(ctx, game.ID)
		if err != nil {
			return err
		}

		for _, p := range players {
			if p.ID == playerID {
				// Re-join: wake the record up.
				p.IsInactive = false
				p.Name = name
				p.AvatarURL = avatarURL
				return s.players.Update(ctx, p)
			}
		}

		if len(players) >= game.Settings.PlayerLimit {
			return apperr.New(apperr.Unavailable, "this game, %s, is already full", game.GID)
		}

		player := &model.Player{
			ID:        playerID,
			GameID:    game.ID,
			Name:      name,
			AvatarURL: avatarURL,
			JoinedAt:  time.Now(),
		}

		if game.State == model.GameStateInProgress {
			pool, err := s.pools.Get(ctx, game.ID)
			if err != nil {
				return err
			}
			if pool == nil {
				return apperr.New(apperr.NotFound, "no card pool for game %s", game.ID)
			}
			drawn, rest := deck.DrawN(pool.Responses, 10)
			pool.Responses = rest
			hand, err := s.cards.GetResponseCards(ctx, drawn)
			if err != nil {
				return err
			}
			player.Hand = hand
			if err := s.pools.Update(ctx, pool); err != nil {
				return err
			}

			// Late joiners judge only after the rotation wraps.
			inRotation := false
			for _, id := range game.JudgeRotation {
				if id == playerID {
					inRotation = true
					break
				}
			}
			if !inRotation {
				game.JudgeRotation = append(game.JudgeRotation, playerID)
				if err := s.games.Update(ctx, game); err != nil {
					return err
				}
			}
		}

		return s.players.Upsert(ctx, player)
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyGame(game.ID, model.EventPlayerJoined, map[string]string{"playerId": playerID, "name": name})
	}
	return game, nil
}

// AddRando seats Rando Cardrissian in a waiting room. Owner only.
func (s *GameService) AddRando(ctx context.Context, gameID, callerID string) error {
	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return apperr.New(apperr.NotFound, "unable to find a game for %s", gameID)
	}
	if game.OwnerID != callerID {
		return apperr.New(apperr.PermissionDenied, "only the owner can invite Rando Cardrissian")
	}
	if game.State != model.GameStateWaitingRoom {
		return apperr.New(apperr.FailedPrecondition, "Rando Cardrissian can only join in the waiting room")
	}

	bot := &model.Player{
		ID:                 model.RandoCardrissian,
		GameID:             gameID,
		Name:               "Rando Cardrissian",
		IsRandoCardrissian: true,
		JoinedAt:           time.Now(),
	}
	return s.players.Upsert(ctx, bot)
}

// StartGame seeds the card pool, deals everyone in, builds the judge
// rotation and generates the first turn. The state moves waitingRoom ->
// starting -> inProgress; inProgress is only observable once everything
// else has committed.
func (s *GameService) StartGame(ctx context.Context, gameID, callerID string) error {
	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return apperr.New(apperr.NotFound, "unable to find a game for %s", gameID)
	}
	if game.OwnerID != callerID {
		return apperr.New(apperr.PermissionDenied, "only the owner of a game can start it")
	}
	// A game stuck in starting (a previous attempt failed mid-way) may be
	// started again by the owner.
	if game.State != model.GameStateWaitingRoom && game.State != model.GameStateStarting {
		return apperr.New(apperr.FailedPrecondition, "this game is not in the waiting room")
	}

	players, err := s.players.List(ctx, gameID)
	if err != nil {
		return err
	}
	if len(players) < 2 {
		return apperr.New(apperr.FailedPrecondition, "there aren't enough players in this game to start, try inviting Rando Cardrissian")
	}

	if game.State == model.GameStateWaitingRoom {
		game.State = model.GameStateStarting
		if err := s.games.Update(ctx, game); err != nil {
			return err
		}
		if err := s.gameCache.SetState(ctx, game.GID, game.State); err != nil {
			log.Printf("failed to cache game %s state: %v", gameID, err)
		}
	}

	err = s.tx.RunAtomic(ctx, func(ctx context.Context) error {
		sets, err := s.cards.GetCardSets(ctx, game.CardSets)
		if err != nil {
			return err
		}
		if len(sets) == 0 {
			return apperr.New(apperr.FailedPrecondition, "this game was set up with an invalid number of card sets")
		}

		var promptGroups, responseGroups [][]string
		for _, set := range sets {
			promptGroups = append(promptGroups, set.PromptIndexes)
			responseGroups = append(responseGroups, set.ResponseIndexes)
		}
		allPrompts := deck.Prepare(s.rng, promptGroups...)
		allResponses := deck.Prepare(s.rng, responseGroups...)

		n := len(players)
		promptSeed, _ := deck.DrawN(allPrompts, promptSeedCount(n))
		responseSeed, _ := deck.DrawN(allResponses, responseSeedCount(n, game.Settings.PrizesToWin))
		pool := &model.CardPool{GameID: gameID, Prompts: promptSeed, Responses: responseSeed}

		// Deal 10 to everyone but Rando Cardrissian.
		var judgeIDs []string
		for _, p := range players {
			if p.IsRandoCardrissian {
				continue
			}
			drawn, rest := deck.DrawN(pool.Responses, 10)
			pool.Responses = rest
			hand, err := s.cards.GetResponseCards(ctx, drawn)
			if err != nil {
				return err
			}
			p.Hand = hand
			if err := s.players.Update(ctx, p); err != nil {
				return err
			}
			judgeIDs = append(judgeIDs, p.ID)
		}

		deck.Shuffle(s.rng, judgeIDs)
		game.JudgeRotation = judgeIDs

		prompt, err := drawAllowedPrompt(ctx, s.cards, game, pool)
		if err != nil {
			return err
		}
		turn := &model.Turn{
			JudgeID:    judgeIDs[0],
			PromptCard: *prompt,
			Responses:  map[string][]model.ResponseCard{},
		}
		if hasBot(players) {
			botCards, err := dealBotResponses(ctx, s.cards, pool, prompt)
			if err != nil {
				return err
			}
			turn.Responses[model.RandoCardrissian] = botCards
		}

		game.Turn = turn
		game.Round = 0
		game.State = model.GameStateInProgress

		if err := s.pools.Seed(ctx, pool); err != nil {
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

	if err := s.gameCache.SetState(ctx, game.GID, model.GameStateInProgress); err != nil {
		log.Printf("failed to cache game %s state: %v", gameID, err)
	}
	for _, p := range players {
		if !p.IsRandoCardrissian {
			if err := s.leaderboard.SetPrizes(ctx, gameID, p.ID, 0); err != nil {
				log.Printf("failed to init leaderboard for game %s: %v", gameID, err)
				break
			}
		}
	}
	if s.notifier != nil {
		s.notifier.NotifyGame(gameID, model.EventGameStarted, model.RoundPayload{
			GameID:  gameID,
			Round:   0,
			JudgeID: game.Turn.JudgeID,
			Prompt:  game.Turn.PromptCard.Text,
		})
	}
	return nil
}

// LeaveGame marks a player inactive and removes them from judging. Their
// pending turn response, if any, is discarded with them.
func (s *GameService) LeaveGame(ctx context.Context, gameID, playerID string) error {
	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return apperr.New(apperr.NotFound, "couldn't find a game for %s", gameID)
	}
	if game.State == model.GameStateStarting {
		return apperr.New(apperr.Cancelled, "you can't leave a game that is starting")
	}

	if game.State != model.GameStateCompleted {
		if err := s.removePlayer(ctx, gameID, playerID); err != nil {
			return err
		}
	}
	if s.notifier != nil {
		s.notifier.NotifyGame(gameID, model.EventPlayerLeft, map[string]string{"playerId": playerID})
	}
	return nil
}

// KickPlayer removes a player on the owner's behalf.
func (s *GameService) KickPlayer(ctx context.Context, gameID, callerID, targetID string) error {
	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return apperr.New(apperr.NotFound, "couldn't find a game for %s", gameID)
	}
	if game.OwnerID != callerID {
		return apperr.New(apperr.PermissionDenied, "only the owner of a game can kick a player")
	}

	if err := s.removePlayer(ctx, gameID, targetID); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.NotifyGame(gameID, model.EventPlayerKicked, map[string]string{"playerId": targetID})
	}
	return nil
}

// Wave sends a greeting push from one player to another.
func (s *GameService) Wave(ctx context.Context, gameID, fromID, toID, message string) error {
	from, err := s.players.Get(ctx, gameID, fromID)
	if err != nil {
		return err
	}
	if from == nil {
		return apperr.New(apperr.NotFound, "unable to find the player sending the wave")
	}
	to, err := s.players.Get(ctx, gameID, toID)
	if err != nil {
		return err
	}
	if to == nil {
		return apperr.New(apperr.NotFound, "unable to find the player for the provided game")
	}

	if s.notifier != nil {
		s.notifier.Notify(gameID, []string{toID}, model.EventWave, model.WavePayload{
			FromPlayerID: fromID,
			FromName:     from.Name,
			Message:      message,
		})
	}
	return nil
}

// UpdateProfile saves a user's new name/avatar and publishes the change
// so the fan-out can refresh their game-scoped player records.
func (s *GameService) UpdateProfile(ctx context.Context, userID, name, avatarURL string) error {
	if name == "" {
		return apperr.New(apperr.InvalidArgument, "you must send a valid name")
	}
	user := &model.User{ID: userID, Name: name, AvatarURL: avatarURL, UpdatedAt: time.Now()}
	if err := s.users.Upsert(ctx, user); err != nil {
		return err
	}
	ev := model.ProfileChanged{UserID: userID, Name: name, AvatarURL: avatarURL}
	if err := s.publisher.Publish(ctx, cache.ChannelProfile, ev); err != nil {
		log.Printf("failed to publish profile change for %s: %v", userID, err)
	}
	return nil
}

// GetGame fetches a game by id.
func (s *GameService) GetGame(ctx context.Context, gameID string) (*model.Game, error) {
	return s.games.GetByID(ctx, gameID)
}

// ListPlayers returns every seat in a game, inactive ones included.
func (s *GameService) ListPlayers(ctx context.Context, gameID string) ([]*model.Player, error) {
	return s.players.List(ctx, gameID)
}

func (s *GameService) removePlayer(ctx context.Context, gameID, playerID string) error {
	return s.tx.RunAtomic(ctx, func(ctx context.Context) error {
		game, err := s.games.GetByID(ctx, gameID)
		if err != nil {
			return err
		}
		if game == nil {
			return apperr.New(apperr.NotFound, "couldn't find a game for %s", gameID)
		}
		player, err := s.players.Get(ctx, gameID, playerID)
		if err != nil {
			return err
		}
		if player == nil {
			return apperr.New(apperr.NotFound, "unable to find that player in this game")
		}

		player.IsInactive = true
		if err := s.players.Update(ctx, player); err != nil {
			return err
		}

		// Drop from judging without disturbing the remaining order.
		rotation := game.JudgeRotation[:0]
		for _, id := range game.JudgeRotation {
			if id != playerID {
				rotation = append(rotation, id)
			}
		}
		game.JudgeRotation = rotation

		if game.Turn != nil && game.Turn.HasResponse(playerID) {
			delete(game.Turn.Responses, playerID)
		}
		return s.games.Update(ctx, game)
	})
}

// findGame resolves a join code: invite-code cache, then invite-code
// lookup, then plain game id.
func (s *GameService) findGame(ctx context.Context, code string) (*model.Game, error) {
	meta, err := s.gameCache.GetMeta(ctx, code)
	if err != nil {
		log.Printf("game cache lookup failed for %s: %v", code, err)
	}
	if meta != nil {
		return s.games.GetByID(ctx, meta.GameID)
	}
	game, err := s.games.FindByGID(ctx, code)
	if err != nil {
		return nil, err
	}
	if game != nil {
		return game, nil
	}
	return s.games.GetByID(ctx, code)
}

// generateGID creates a 6-char alphanumeric invite code.
func (s *GameService) generateGID(ctx context.Context) (string, error) {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const codeLen = 6

	for attempts := 0; attempts < 10; attempts++ {
		b := make([]byte, codeLen)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}
		code := make([]byte, codeLen)
		for i := range code {
			code[i] = chars[int(b[i])%len(chars)]
		}
		existing, err := s.games.FindByGID(ctx, string(code))
		if err != nil {
			return "", err
		}
		if existing == nil {
			return string(code), nil
		}
	}
	return "", apperr.New(apperr.Unavailable, "failed to generate a unique game code")
}

func promptSeedCount(numPlayers int) int {
	return maxInt(numPlayers*12, 200)
}

func responseSeedCount(numPlayers, prizesToWin int) int {
	count := numPlayers*10 + numPlayers*prizesToWin*numPlayers + numPlayers*10
	return maxInt(count, 200)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
