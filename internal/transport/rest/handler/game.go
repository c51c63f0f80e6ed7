package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"promptparty/internal/cache"
	"promptparty/internal/model"
	"promptparty/internal/service"
	"promptparty/internal/transport/rest/middleware"
)

// GameHandler handles game lifecycle endpoints
type GameHandler struct {
	gameSvc     *service.GameService
	leaderboard cache.LeaderboardCache
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameSvc *service.GameService, leaderboard cache.LeaderboardCache) *GameHandler {
	return &GameHandler{
		gameSvc:     gameSvc,
		leaderboard: leaderboard,
	}
}

// CreateGameRequest is the request body for creating a game
type CreateGameRequest struct {
	CardSets  []string             `json:"cardSets"`
	Settings  *GameSettingsRequest `json:"settings,omitempty"`
	AvatarURL string               `json:"avatarUrl,omitempty"`
}

// GameSettingsRequest mirrors model.GameSettings but decodes the rule
// flags as pointers so an omitted flag keeps its default instead of
// decoding to false. Both specials are enabled unless the caller
// explicitly turns them off.
type GameSettingsRequest struct {
	PrizesToWin       int   `json:"prizesToWin"`
	PlayerLimit       int   `json:"playerLimit"`
	Pick2Enabled      *bool `json:"pick2Enabled"`
	Draw2Pick3Enabled *bool `json:"draw2Pick3Enabled"`
}

func (r *GameSettingsRequest) resolve() model.GameSettings {
	settings := model.DefaultGameSettings()
	if r == nil {
		return settings
	}
	if r.PrizesToWin > 0 {
		settings.PrizesToWin = r.PrizesToWin
	}
	settings.PlayerLimit = r.PlayerLimit
	if r.Pick2Enabled != nil {
		settings.Pick2Enabled = *r.Pick2Enabled
	}
	if r.Draw2Pick3Enabled != nil {
		settings.Draw2Pick3Enabled = *r.Draw2Pick3Enabled
	}
	return settings
}

// Create handles POST /v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())
	playerName := middleware.GetPlayerName(r.Context())

	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	game, err := h.gameSvc.CreateGame(r.Context(), playerID, playerName, req.AvatarURL, req.Settings.resolve(), req.CardSets)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"gameId": game.ID,
		"gid":    game.GID,
	})
}

// JoinRequest is the request body for joining a game
type JoinRequest struct {
	GID       string `json:"gid"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Join handles POST /v1/games/join
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())
	playerName := middleware.GetPlayerName(r.Context())

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.GID == "" {
		writeError(w, http.StatusBadRequest, "gid is required")
		return
	}

	game, err := h.gameSvc.JoinGame(r.Context(), req.GID, playerID, playerName, req.AvatarURL)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"gameId": game.ID})
}

// Get handles GET /v1/games/{gameId}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]

	game, err := h.gameSvc.GetGame(r.Context(), gameID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if game == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	players, err := h.gameSvc.ListPlayers(r.Context(), gameID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"game":    game,
		"players": players,
	})
}

// Start handles POST /v1/games/{gameId}/start
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]
	playerID := middleware.GetPlayerID(r.Context())

	if err := h.gameSvc.StartGame(r.Context(), gameID, playerID); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"state": string(model.GameStateInProgress)})
}

// AddRando handles POST /v1/games/{gameId}/rando
func (h *GameHandler) AddRando(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]
	playerID := middleware.GetPlayerID(r.Context())

	if err := h.gameSvc.AddRando(r.Context(), gameID, playerID); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"playerId": model.RandoCardrissian})
}

// Leave handles POST /v1/games/{gameId}/leave
func (h *GameHandler) Leave(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]
	playerID := middleware.GetPlayerID(r.Context())

	if err := h.gameSvc.LeaveGame(r.Context(), gameID, playerID); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

// Kick handles POST /v1/games/{gameId}/players/{playerId}/kick
func (h *GameHandler) Kick(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	callerID := middleware.GetPlayerID(r.Context())

	if err := h.gameSvc.KickPlayer(r.Context(), vars["gameId"], callerID, vars["playerId"]); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "kicked"})
}

// WaveRequest is the request body for waving at another player
type WaveRequest struct {
	Message string `json:"message,omitempty"`
}

// Wave handles POST /v1/games/{gameId}/players/{playerId}/wave
func (h *GameHandler) Wave(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	fromID := middleware.GetPlayerID(r.Context())

	var req WaveRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.gameSvc.Wave(r.Context(), vars["gameId"], fromID, vars["playerId"], req.Message); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "waved"})
}

// UpdateProfileRequest is the request body for updating a profile
type UpdateProfileRequest struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// UpdateProfile handles PUT /v1/profile
func (h *GameHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := h.gameSvc.UpdateProfile(r.Context(), playerID, req.Name, req.AvatarURL); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Leaderboard handles GET /v1/games/{gameId}/leaderboard
func (h *GameHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]

	topStr := r.URL.Query().Get("top")
	top := 20
	if topStr != "" {
		if n, err := strconv.Atoi(topStr); err == nil && n > 0 {
			top = n
		}
	}

	entries, err := h.leaderboard.GetTop(r.Context(), gameID, top)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": entries})
}
