package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"promptparty/internal/service"
	"promptparty/internal/transport/rest/middleware"
)

// TurnHandler handles in-round gameplay endpoints
type TurnHandler struct {
	turnSvc *service.TurnService
}

// NewTurnHandler creates a new turn handler
func NewTurnHandler(turnSvc *service.TurnService) *TurnHandler {
	return &TurnHandler{turnSvc: turnSvc}
}

// SubmitResponsesRequest is the request body for playing response cards
type SubmitResponsesRequest struct {
	CardIDs []string `json:"cardIds"`
}

// SubmitResponses handles POST /v1/games/{gameId}/responses
func (h *TurnHandler) SubmitResponses(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]
	playerID := middleware.GetPlayerID(r.Context())

	var req SubmitResponsesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.CardIDs) == 0 {
		writeError(w, http.StatusBadRequest, "cardIds is required")
		return
	}

	if err := h.turnSvc.SubmitResponses(r.Context(), gameID, playerID, req.CardIDs); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "submitted"})
}

// PickWinnerRequest is the request body for picking a turn winner
type PickWinnerRequest struct {
	PlayerID string `json:"playerId"`
}

// PickWinner handles POST /v1/games/{gameId}/winner
func (h *TurnHandler) PickWinner(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]
	judgeID := middleware.GetPlayerID(r.Context())

	var req PickWinnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "playerId is required")
		return
	}

	if err := h.turnSvc.PickWinner(r.Context(), gameID, judgeID, req.PlayerID); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "picked"})
}

// ReDealHand handles POST /v1/games/{gameId}/redeal
func (h *TurnHandler) ReDealHand(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]
	playerID := middleware.GetPlayerID(r.Context())

	if err := h.turnSvc.ReDealHand(r.Context(), gameID, playerID); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "redealt"})
}

// Downvote handles POST /v1/games/{gameId}/downvote
func (h *TurnHandler) Downvote(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]
	playerID := middleware.GetPlayerID(r.Context())

	if err := h.turnSvc.DownvotePrompt(r.Context(), gameID, playerID); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "downvoted"})
}
