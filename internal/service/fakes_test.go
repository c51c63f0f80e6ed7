package service

import (
	"context"
	"fmt"
	"sync"

	"promptparty/internal/cache"
	"promptparty/internal/deck"
	"promptparty/internal/model"
)

// The fakes below back the engine tests with plain maps. A single mutex
// in fakeTx stands in for mongo's transaction: RunAtomic serializes
// callers exactly like the session-scoped transactions do in production.

type fakeTx struct {
	mu sync.Mutex
}

func (t *fakeTx) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}

type fakeGameRepo struct {
	games map[string]*model.Game
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{games: map[string]*model.Game{}}
}

func (r *fakeGameRepo) Create(ctx context.Context, game *model.Game) error {
	if _, ok := r.games[game.ID]; ok {
		return fmt.Errorf("game %s already exists", game.ID)
	}
	r.games[game.ID] = game
	return nil
}

func (r *fakeGameRepo) GetByID(ctx context.Context, gameID string) (*model.Game, error) {
	return r.games[gameID], nil
}

func (r *fakeGameRepo) FindByGID(ctx context.Context, gid string) (*model.Game, error) {
	for _, g := range r.games {
		if g.GID == gid {
			return g, nil
		}
	}
	return nil, nil
}

func (r *fakeGameRepo) Update(ctx context.Context, game *model.Game) error {
	r.games[game.ID] = game
	return nil
}

type fakePlayerRepo struct {
	order   map[string][]string
	players map[string]map[string]*model.Player
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{
		order:   map[string][]string{},
		players: map[string]map[string]*model.Player{},
	}
}

func (r *fakePlayerRepo) Upsert(ctx context.Context, player *model.Player) error {
	byID := r.players[player.GameID]
	if byID == nil {
		byID = map[string]*model.Player{}
		r.players[player.GameID] = byID
	}
	if _, ok := byID[player.ID]; !ok {
		r.order[player.GameID] = append(r.order[player.GameID], player.ID)
	}
	byID[player.ID] = player
	return nil
}

func (r *fakePlayerRepo) Get(ctx context.Context, gameID, playerID string) (*model.Player, error) {
	return r.players[gameID][playerID], nil
}

func (r *fakePlayerRepo) List(ctx context.Context, gameID string) ([]*model.Player, error) {
	out := make([]*model.Player, 0, len(r.order[gameID]))
	for _, id := range r.order[gameID] {
		out = append(out, r.players[gameID][id])
	}
	return out, nil
}

func (r *fakePlayerRepo) Update(ctx context.Context, player *model.Player) error {
	byID := r.players[player.GameID]
	if byID == nil || byID[player.ID] == nil {
		return fmt.Errorf("player %s not in game %s", player.ID, player.GameID)
	}
	byID[player.ID] = player
	return nil
}

func (r *fakePlayerRepo) UpdateProfile(ctx context.Context, playerID, name, avatarURL string) error {
	for _, byID := range r.players {
		if p, ok := byID[playerID]; ok {
			p.Name = name
			p.AvatarURL = avatarURL
		}
	}
	return nil
}

type fakeCardRepo struct {
	sets      map[string]*model.CardSet
	prompts   map[string]model.PromptCard
	responses map[string]model.ResponseCard
}

func newFakeCardRepo() *fakeCardRepo {
	return &fakeCardRepo{
		sets:      map[string]*model.CardSet{},
		prompts:   map[string]model.PromptCard{},
		responses: map[string]model.ResponseCard{},
	}
}

func (r *fakeCardRepo) GetCardSets(ctx context.Context, setIDs []string) ([]*model.CardSet, error) {
	var out []*model.CardSet
	for _, id := range setIDs {
		if s, ok := r.sets[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeCardRepo) GetPromptCard(ctx context.Context, cid string) (*model.PromptCard, error) {
	if c, ok := r.prompts[cid]; ok {
		return &c, nil
	}
	return nil, nil
}

func (r *fakeCardRepo) GetResponseCards(ctx context.Context, cids []string) ([]model.ResponseCard, error) {
	out := make([]model.ResponseCard, 0, len(cids))
	for _, cid := range cids {
		c, ok := r.responses[cid]
		if !ok {
			return nil, fmt.Errorf("response card %s is not in the catalog", cid)
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCardRepo) PutCardSet(ctx context.Context, set *model.CardSet) error {
	r.sets[set.ID] = set
	return nil
}

func (r *fakeCardRepo) PutPromptCards(ctx context.Context, cards []model.PromptCard) error {
	for _, c := range cards {
		r.prompts[c.CID] = c
	}
	return nil
}

func (r *fakeCardRepo) PutResponseCards(ctx context.Context, cards []model.ResponseCard) error {
	for _, c := range cards {
		r.responses[c.CID] = c
	}
	return nil
}

type fakePoolRepo struct {
	pools map[string]*model.CardPool
}

func newFakePoolRepo() *fakePoolRepo {
	return &fakePoolRepo{pools: map[string]*model.CardPool{}}
}

func (r *fakePoolRepo) Seed(ctx context.Context, pool *model.CardPool) error {
	r.pools[pool.GameID] = pool
	return nil
}

func (r *fakePoolRepo) Get(ctx context.Context, gameID string) (*model.CardPool, error) {
	return r.pools[gameID], nil
}

func (r *fakePoolRepo) Update(ctx context.Context, pool *model.CardPool) error {
	r.pools[pool.GameID] = pool
	return nil
}

type fakeTallyRepo struct {
	tallies map[string]*model.Tally
	vetoed  []model.PromptCard
}

func newFakeTallyRepo() *fakeTallyRepo {
	return &fakeTallyRepo{tallies: map[string]*model.Tally{}}
}

func (r *fakeTallyRepo) Get(ctx context.Context, gameID string) (*model.Tally, error) {
	return r.tallies[gameID], nil
}

func (r *fakeTallyRepo) Put(ctx context.Context, tally *model.Tally) error {
	r.tallies[tally.GameID] = tally
	return nil
}

func (r *fakeTallyRepo) Reset(ctx context.Context, gameID, promptCID string) error {
	r.tallies[gameID] = &model.Tally{GameID: gameID, PromptCID: promptCID, Votes: []string{}}
	return nil
}

func (r *fakeTallyRepo) ArchiveVetoed(ctx context.Context, gameID string, card model.PromptCard) error {
	r.vetoed = append(r.vetoed, card)
	return nil
}

type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (r *fakeUserRepo) Upsert(ctx context.Context, user *model.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Get(ctx context.Context, userID string) (*model.User, error) {
	return r.users[userID], nil
}

type fakeGameCache struct {
	meta map[string]*cache.GameMeta
}

func newFakeGameCache() *fakeGameCache {
	return &fakeGameCache{meta: map[string]*cache.GameMeta{}}
}

func (c *fakeGameCache) SetMeta(ctx context.Context, gid string, meta *cache.GameMeta) error {
	c.meta[gid] = meta
	return nil
}

func (c *fakeGameCache) GetMeta(ctx context.Context, gid string) (*cache.GameMeta, error) {
	return c.meta[gid], nil
}

func (c *fakeGameCache) SetState(ctx context.Context, gid string, state model.GameState) error {
	if m, ok := c.meta[gid]; ok {
		m.State = state
	}
	return nil
}

func (c *fakeGameCache) Delete(ctx context.Context, gid string) error {
	delete(c.meta, gid)
	return nil
}

type fakeLeaderboard struct {
	prizes map[string]map[string]int
}

func newFakeLeaderboard() *fakeLeaderboard {
	return &fakeLeaderboard{prizes: map[string]map[string]int{}}
}

func (c *fakeLeaderboard) SetPrizes(ctx context.Context, gameID, playerID string, prizes int) error {
	if c.prizes[gameID] == nil {
		c.prizes[gameID] = map[string]int{}
	}
	c.prizes[gameID][playerID] = prizes
	return nil
}

func (c *fakeLeaderboard) AddPrize(ctx context.Context, gameID, playerID string) error {
	if c.prizes[gameID] == nil {
		c.prizes[gameID] = map[string]int{}
	}
	c.prizes[gameID][playerID]++
	return nil
}

func (c *fakeLeaderboard) GetTop(ctx context.Context, gameID string, limit int) ([]cache.LeaderboardEntry, error) {
	var out []cache.LeaderboardEntry
	for id, n := range c.prizes[gameID] {
		out = append(out, cache.LeaderboardEntry{PlayerID: id, Prizes: n})
	}
	return out, nil
}

type publishedEvent struct {
	Channel string
	Payload interface{}
}

type fakePublisher struct {
	events []publishedEvent
}

func (p *fakePublisher) Publish(ctx context.Context, channel string, payload interface{}) error {
	p.events = append(p.events, publishedEvent{Channel: channel, Payload: payload})
	return nil
}

type sentEvent struct {
	GameID    string
	PlayerIDs []string
	Kind      model.EventKind
}

type fakeNotifier struct {
	events []sentEvent
}

func (n *fakeNotifier) Notify(gameID string, playerIDs []string, kind model.EventKind, payload interface{}) {
	n.events = append(n.events, sentEvent{GameID: gameID, PlayerIDs: playerIDs, Kind: kind})
}

func (n *fakeNotifier) NotifyGame(gameID string, kind model.EventKind, payload interface{}) {
	n.events = append(n.events, sentEvent{GameID: gameID, Kind: kind})
}

func (n *fakeNotifier) count(kind model.EventKind) int {
	c := 0
	for _, ev := range n.events {
		if ev.Kind == kind {
			c++
		}
	}
	return c
}

// fixedSource makes dealing follow insertion order: shuffles and cuts
// leave the pool exactly as seeded.
type fixedSource struct{}

func (fixedSource) Intn(n int) int                     { return 0 }
func (fixedSource) Shuffle(n int, swap func(i, j int)) {}

var _ deck.Source = fixedSource{}

// engine bundles every fake behind fully wired services.
type engine struct {
	games       *fakeGameRepo
	players     *fakePlayerRepo
	cards       *fakeCardRepo
	pools       *fakePoolRepo
	tallies     *fakeTallyRepo
	users       *fakeUserRepo
	gameCache   *fakeGameCache
	leaderboard *fakeLeaderboard
	publisher   *fakePublisher
	notifier    *fakeNotifier

	gameSvc *GameService
	turnSvc *TurnService
	monitor *DownvoteMonitor
}

func newEngine() *engine {
	e := &engine{
		games:       newFakeGameRepo(),
		players:     newFakePlayerRepo(),
		cards:       newFakeCardRepo(),
		pools:       newFakePoolRepo(),
		tallies:     newFakeTallyRepo(),
		users:       newFakeUserRepo(),
		gameCache:   newFakeGameCache(),
		leaderboard: newFakeLeaderboard(),
		publisher:   &fakePublisher{},
		notifier:    &fakeNotifier{},
	}
	tx := &fakeTx{}
	e.gameSvc = NewGameService(e.games, e.players, e.cards, e.pools, e.tallies, e.users, e.gameCache, e.leaderboard, e.publisher, tx, fixedSource{})
	e.turnSvc = NewTurnService(e.games, e.players, e.cards, e.pools, e.tallies, e.leaderboard, e.publisher, tx)
	e.monitor = NewDownvoteMonitor(e.games, e.players, e.cards, e.pools, e.tallies, tx)
	e.gameSvc.SetNotifier(e.notifier)
	e.turnSvc.SetNotifier(e.notifier)
	e.monitor.SetNotifier(e.notifier)
	return e
}

// seedCatalog fills the card catalog with one set of plain prompts and
// responses plus any extra prompts passed in.
func (e *engine) seedCatalog(numPrompts, numResponses int, extras ...model.PromptCard) {
	set := &model.CardSet{ID: "base", Name: "Base Set"}
	for i := 0; i < numPrompts; i++ {
		cid := fmt.Sprintf("p%03d", i)
		e.cards.prompts[cid] = model.PromptCard{CID: cid, Text: fmt.Sprintf("prompt %d", i), Set: "Base Set", Source: "base"}
		set.PromptIndexes = append(set.PromptIndexes, cid)
	}
	for _, extra := range extras {
		e.cards.prompts[extra.CID] = extra
		set.PromptIndexes = append(set.PromptIndexes, extra.CID)
	}
	for i := 0; i < numResponses; i++ {
		cid := fmt.Sprintf("r%03d", i)
		e.cards.responses[cid] = model.ResponseCard{CID: cid, Text: fmt.Sprintf("response %d", i), Set: "Base Set", Source: "base"}
		set.ResponseIndexes = append(set.ResponseIndexes, cid)
	}
	set.Prompts = len(set.PromptIndexes)
	set.Responses = len(set.ResponseIndexes)
	e.cards.sets[set.ID] = set
}
