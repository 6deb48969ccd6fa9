package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"questionsbattle/internal/cache"
	"questionsbattle/internal/config"
	"questionsbattle/internal/judge"
	"questionsbattle/internal/repository"
	"questionsbattle/internal/service"
	"questionsbattle/internal/transport/rest"
	"questionsbattle/internal/transport/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	ctx := context.Background()
	cfg := config.Load()

	if cfg.AI.IsEnabled() {
		log.Printf("Judge: %s (key configured)", cfg.AI.ChatModel)
	} else {
		log.Println("Judge: API key NOT SET, using local mock")
	}

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
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Caches, repositories, clients
	gameCache := cache.NewGameCache(rdb)
	messageCache := cache.NewMessageCache(rdb)
	archiveRepo := repository.NewArchiveRepo(db)
	judgeClient := judge.NewClient(cfg.AI)

	// Services
	gameSvc := service.NewGameService(cfg, gameCache, messageCache, archiveRepo, judgeClient)
	gameSvc.SetBroadcaster(wsHub)
	defer gameSvc.Shutdown()

	router := rest.NewRouter(&rest.Container{
		GameService: gameSvc,
		WSHub:       wsHub,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		log.Println("Endpoints:")
		log.Println("  POST /v1/rooms")
		log.Println("  GET  /v1/rooms/{code}")
		log.Println("  POST /v1/rooms/{code}/join")
		log.Println("  POST /v1/rooms/{code}/start")
		log.Println("  POST /v1/rooms/{code}/end")
		log.Println("  WS   /v1/ws/rooms/{code}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

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
