package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"promptparty/internal/cache"
	"promptparty/internal/config"
	"promptparty/internal/deck"
	"promptparty/internal/repository"
	"promptparty/internal/service"
	"promptparty/internal/transport/rest"
	"promptparty/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	redisAddr := cfg.RedisAddr
	// Remove redis:// prefix if present
	if len(redisAddr) > 8 && redisAddr[:8] == "redis://" {
		redisAddr = redisAddr[8:]
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories
	gameRepo := repository.NewGameRepo(db)
	playerRepo := repository.NewPlayerRepo(db)
	cardRepo := repository.NewCardRepo(db)
	poolRepo := repository.NewPoolRepo(db)
	tallyRepo := repository.NewTallyRepo(db)
	userRepo := repository.NewUserRepo(db)
	tx := repository.NewTxRunner(mongoClient)

	// Initialize caches
	gameCache := cache.NewGameCache(rdb)
	leaderboard := cache.NewLeaderboardCache(rdb)
	publisher := cache.NewPublisher(rdb)

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret)
	gameSvc := service.NewGameService(gameRepo, playerRepo, cardRepo, poolRepo, tallyRepo, userRepo, gameCache, leaderboard, publisher, tx, deck.Global())
	turnSvc := service.NewTurnService(gameRepo, playerRepo, cardRepo, poolRepo, tallyRepo, leaderboard, publisher, tx)
	monitor := service.NewDownvoteMonitor(gameRepo, playerRepo, cardRepo, poolRepo, tallyRepo, tx)
	profileSync := service.NewProfileSync(playerRepo)

	// Inject notifier (wsHub implements service.Notifier)
	gameSvc.SetNotifier(wsHub)
	turnSvc.SetNotifier(wsHub)
	monitor.SetNotifier(wsHub)

	// Background subscribers for tally and profile events
	subCtx, subCancel := context.WithCancel(ctx)
	defer subCancel()
	go cache.Subscribe(subCtx, rdb, cache.ChannelTally, monitor.HandleRaw)
	go cache.Subscribe(subCtx, rdb, cache.ChannelProfile, profileSync.HandleRaw)

	// Create router with container
	container := &rest.Container{
		AuthService: authSvc,
		GameService: gameSvc,
		TurnService: turnSvc,
		Leaderboard: leaderboard,
		WSHub:       wsHub,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/signin")
		log.Println("  POST /v1/games")
		log.Println("  POST /v1/games/join")
		log.Println("  POST /v1/games/{gameId}/start")
		log.Println("  POST /v1/games/{gameId}/responses")
		log.Println("  POST /v1/games/{gameId}/winner")
		log.Println("  WS  /v1/ws/games/{gameId}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
