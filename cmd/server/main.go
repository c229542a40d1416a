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

	"storefront-gateway/config"
	"storefront-gateway/internal/api"
	"storefront-gateway/internal/calc"
	"storefront-gateway/internal/cart"
	"storefront-gateway/internal/kv"
	"storefront-gateway/internal/search"
	"storefront-gateway/internal/session"
	"storefront-gateway/internal/upstream"
	"storefront-gateway/internal/util"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront gateway")

	tp, err := util.InitTracer("storefront-gateway", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	janitorCtx, janitorCancel := context.WithCancel(context.Background())
	defer janitorCancel()

	store := newStateStore(janitorCtx, cfg)
	defer store.Close()

	upstreamClient := upstream.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
	log.Printf("Upstream client initialized: %s", cfg.Upstream.BaseURL)

	sessions := session.NewManager(store, cfg.Session.TTL)
	carts := cart.NewService(store, cfg.Session.CartTTL)
	calcs := calc.NewSessions(store, cfg.Session.CartTTL)
	history := search.NewHistory(store)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(upstreamClient, sessions, carts, calcs, history)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	janitorCancel()
	log.Println("Server exited")
}

// newStateStore connects to Redis and falls back to the in-memory store when
// Redis is unreachable, so the gateway still runs single-instance without it.
func newStateStore(ctx context.Context, cfg *config.Config) kv.Store {
	redisStore, err := kv.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("Redis unavailable, using in-memory session store: %v", err)
		memory := kv.NewMemoryStore()
		memory.StartJanitor(ctx, time.Minute)
		return memory
	}
	log.Printf("Redis connected: %s", cfg.Redis.Addr)
	return redisStore
}
