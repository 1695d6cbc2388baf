package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DanteBelNan/sockets-server/config"
	"github.com/DanteBelNan/sockets-server/internal/auth"
	"github.com/DanteBelNan/sockets-server/internal/chat"
	"github.com/DanteBelNan/sockets-server/internal/postgres"
	"github.com/DanteBelNan/sockets-server/internal/service"
	httpx "github.com/DanteBelNan/sockets-server/internal/transport/http"
	"github.com/DanteBelNan/sockets-server/internal/transport/ws"
	"github.com/DanteBelNan/sockets-server/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting sockets-server",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- postgres (optional: history API only) ---
	ctx := context.Background()
	var historySvc *service.HistoryService
	if cfg.Postgres.DSN != "" {
		pc := cfg.Postgres.ToPoolConfig()
		if pc.ApplicationName == "" {
			pc.ApplicationName = cfg.Logging.Service
		}
		pool, err := postgres.NewPool(ctx, pc)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pool.Close()

		historySvc = service.NewHistoryService(postgres.NewMessageRepository(pool))
	} else {
		slog.Warn("postgres.dsn empty, message history disabled")
	}

	// --- identity verifier ---
	verifier := auth.NewJWTVerifier([]byte(cfg.Auth.Secret), cfg.Auth.Issuer, cfg.Auth.Audience)

	// --- chat core: registry, namespaces, coordinator ---
	registry := chat.NewRegistry()
	generalHub := ws.NewHub()
	privateHub := ws.NewHub()
	presence := chat.NewPresence(generalHub)
	coord := chat.NewCoordinator(registry, privateHub)

	wsServer := ws.NewServer(verifier, generalHub, privateHub, presence, coord)

	// --- HTTP ---
	handler := httpx.NewHandler(historySvc, registry)
	router := httpx.NewRouter(handler, verifier, wsServer)
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
