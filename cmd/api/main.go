package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/coursedesk/backend/internal/config"
	"github.com/coursedesk/backend/internal/handler"
	chatHandler "github.com/coursedesk/backend/internal/handler/chat"
	"github.com/coursedesk/backend/internal/model/registry"
	"github.com/coursedesk/backend/internal/service/advisor"
	"github.com/coursedesk/backend/internal/service/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize registry store with the seeded catalog and the chat service
	store := registry.NewStore(registry.Seed())
	chatService := chat.NewService()

	// Initialize the advisor (tool-calling loop over the chat model)
	var advisorSvc chatHandler.Advisor
	if cfg.AI.Enabled() {
		svc, err := advisor.NewService(ctx, store, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize advisor service: %v", err)
			log.Println("continuing without conversational functionality - check Ark model environment variables")
		} else {
			advisorSvc = svc
			log.Println("advisor service initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, skipping advisor initialization")
	}

	router := handler.NewRouter(store, chatService, advisorSvc)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("CourseDesk backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
