package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"promptparty/internal/cache"
	"promptparty/internal/service"
	"promptparty/internal/transport/rest/handler"
	"promptparty/internal/transport/rest/middleware"
	"promptparty/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService *service.AuthService
	GameService *service.GameService
	TurnService *service.TurnService
	Leaderboard cache.LeaderboardCache
	WSHub       *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	gameHandler := handler.NewGameHandler(c.GameService, c.Leaderboard)
	turnHandler := handler.NewTurnHandler(c.TurnService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/signin", authHandler.SignIn).Methods("POST", "OPTIONS")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/games/{gameId}", wsHandler.GameWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Player routes (require player auth)
	playerRoutes := v1.NewRoute().Subrouter()
	playerRoutes.Use(authMW.RequirePlayer)

	playerRoutes.HandleFunc("/games", gameHandler.Create).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/join", gameHandler.Join).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}", gameHandler.Get).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/start", gameHandler.Start).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/rando", gameHandler.AddRando).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/leave", gameHandler.Leave).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/leaderboard", gameHandler.Leaderboard).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/players/{playerId}/kick", gameHandler.Kick).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/players/{playerId}/wave", gameHandler.Wave).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/profile", gameHandler.UpdateProfile).Methods("PUT", "OPTIONS")

	playerRoutes.HandleFunc("/games/{gameId}/responses", turnHandler.SubmitResponses).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/winner", turnHandler.PickWinner).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/redeal", turnHandler.ReDealHand).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/downvote", turnHandler.Downvote).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
