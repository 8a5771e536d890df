package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"guestbook-backend/internal/config"
	"guestbook-backend/internal/database"
	"guestbook-backend/internal/handlers"
	"guestbook-backend/internal/models"
	"guestbook-backend/internal/repository"
	"guestbook-backend/internal/router"
	"guestbook-backend/internal/services"
	"guestbook-backend/internal/websocket"
)

type entryStore interface {
	Append(ctx context.Context, name, message string) (*models.Entry, error)
	ListAll(ctx context.Context) ([]models.Entry, error)
}

func main() {
	log.Println("🚀 Starting Guestbook Backend...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ──── Step 1: Load Environment Variables ────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("✗ Configuration invalid: %v", err)
	}
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize Guestbook Store ────
	var store entryStore
	switch cfg.StoreBackend {
	case config.StorePostgres:
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("✗ PostgreSQL connection failed: %v", err)
		}
		defer pool.Close()
		log.Println("✓ PostgreSQL connected")

		if err := database.RunMigrations(ctx, pool, database.Migrations()); err != nil {
			log.Fatalf("✗ Database migration failed: %v", err)
		}
		log.Println("✓ Database migrations applied")
		store = repository.NewEntryRepo(pool)
	default:
		fileRepo, err := repository.NewFileEntryRepo(cfg.GuestbookFile)
		if err != nil {
			log.Fatalf("✗ Guestbook file store failed: %v", err)
		}
		store = fileRepo
		log.Printf("✓ Guestbook file store at %s", cfg.GuestbookFile)
	}

	// ──── Step 3: Initialize Realtime Delivery ────
	var wsHub *websocket.Hub
	var broadcaster services.Broadcaster = services.NopBroadcaster{}
	if cfg.RealtimeEnabled {
		var publisher, subscriber *redis.Client
		if cfg.RedisURL != "" {
			redisClients, err := database.NewRedisClients(cfg.RedisURL)
			if err != nil {
				log.Fatalf("✗ Redis connection failed: %v", err)
			}
			defer redisClients.Close()
			publisher, subscriber = redisClients.Publisher, redisClients.PubSub
			log.Println("✓ Redis connected")
		}

		wsHub = websocket.NewHub(publisher, subscriber)
		go func() {
			if err := wsHub.Run(ctx); err != nil {
				log.Printf("✗ WebSocket relay stopped: %v", err)
			}
		}()
		broadcaster = wsHub
		log.Println("✓ WebSocket hub started")
	} else {
		log.Println("✓ Realtime disabled, clients poll /guestbook")
	}

	// ──── Step 4: Initialize Chat Backend ────
	backend, err := newChatBackend(ctx, cfg)
	if err != nil {
		log.Fatalf("✗ Chat client initialization failed: %v", err)
	}

	// ──── Initialize Services ────
	guestbookService := services.NewGuestbookService(store, broadcaster, services.Limits{
		NameMax:    cfg.NameMaxLen,
		MessageMax: cfg.MessageMaxLen,
	}, cfg.StoreTimeout)
	chatService := services.NewChatService(backend, services.Persona{
		Prompt:   cfg.PersonaPrompt,
		Greeting: cfg.PersonaGreeting,
	}, cfg.ModelTimeout, cfg.GeminiConcurrentReqs)
	defer chatService.Close()

	// ──── Initialize Handlers ────
	pageHandler := handlers.NewPageHandler(guestbookService, cfg.RealtimeEnabled)
	guestbookHandler := handlers.NewGuestbookHandler(guestbookService)
	chatHandler := handlers.NewChatHandler(chatService)

	// ──── Step 5: Start HTTP Server ────
	r := router.New(pageHandler, guestbookHandler, chatHandler, wsHub, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.ModelTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()

		log.Println("Shutting down...")
		if wsHub != nil {
			wsHub.Close()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("✓ Guestbook Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  Store: %s, chat: %s", cfg.StoreBackend, cfg.ChatProvider)
	if wsHub != nil {
		log.Printf("  WS:    ws://localhost:%s/ws", cfg.Port)
	}

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
}

// newChatBackend picks the configured provider. A missing key leaves /ask answering
// with an error instead of stopping the guestbook from starting.
func newChatBackend(ctx context.Context, cfg *config.Config) (services.ChatBackend, error) {
	if cfg.ChatAPIKey() == "" {
		log.Printf("⚠ No API key for %s, /ask is disabled", cfg.ChatProvider)
		return services.Unconfigured(cfg.ChatProvider + " API key not set"), nil
	}

	switch cfg.ChatProvider {
	case config.ProviderOpenAI:
		log.Printf("✓ OpenAI-compatible client initialized (%s)", cfg.OpenAIModel)
		return services.NewOpenAIBackend(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel), nil
	default:
		backend, err := services.NewGeminiBackend(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		log.Printf("✓ Gemini client initialized (%s)", cfg.GeminiModel)
		return backend, nil
	}
}
