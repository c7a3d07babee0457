package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"drawit/internal/cache"
	"drawit/internal/config"
	"drawit/internal/repository"
	"drawit/internal/service"
	"drawit/internal/transport/rest"
	"drawit/internal/transport/ws"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}
	cfg := config.Load()
	ctx := context.Background()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	redisAddr := strings.TrimPrefix(cfg.RedisAddr, "redis://")
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize repositories and caches
	userRepo := repository.NewUserRepo(db)
	lobbyRepo := repository.NewLobbyRepo(db)
	gameRepo := repository.NewGameRepo(db)
	drawingRepo := repository.NewDrawingRepo(db)
	ratingCache := cache.NewRatingCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret)
	userSvc := service.NewUserService(userRepo)
	lobbySvc := service.NewLobbyService(lobbyRepo, userRepo)
	gameSvc := service.NewGameService(gameRepo, lobbyRepo, userRepo)
	drawingSvc := service.NewDrawingService(drawingRepo, ratingCache)

	// Initialize realtime core
	registry := ws.NewRegistry()
	dispatcher := ws.NewDispatcher(registry)
	reconciler := ws.NewReconciler(registry, dispatcher, lobbyRepo, gameRepo, userRepo, cfg.SyncInterval)
	coordinator := ws.NewCoordinator(registry, dispatcher, reconciler, lobbyRepo, gameRepo, cfg.JoinSettleDelay, cfg.StartBroadcastDelay)
	router := ws.NewRouter(registry, dispatcher, reconciler, coordinator, userRepo, gameRepo)
	heartbeat := ws.NewHeartbeat(registry, cfg.HeartbeatInterval, cfg.StaleTimeout)
	wsHandler := ws.NewHandler(authSvc, registry, dispatcher, reconciler, router)

	// Service mutations push state through the reconciler
	lobbySvc.SetNotifier(reconciler)
	gameSvc.SetNotifier(reconciler)

	go heartbeat.Run()
	go reconciler.Run()

	container := &rest.Container{
		AuthService:    authSvc,
		UserService:    userSvc,
		LobbyService:   lobbySvc,
		GameService:    gameSvc,
		DrawingService: drawingSvc,
		WSHandler:      wsHandler,
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: rest.NewRouter(container),
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	heartbeat.Stop()
	reconciler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
