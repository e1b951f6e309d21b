package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/larriantoniy/wa_gateway/internal/adapters/dedup"
	"github.com/larriantoniy/wa_gateway/internal/adapters/httpapi"
	"github.com/larriantoniy/wa_gateway/internal/adapters/relay"
	"github.com/larriantoniy/wa_gateway/internal/adapters/wa"
	"github.com/larriantoniy/wa_gateway/internal/config"
	"github.com/larriantoniy/wa_gateway/internal/domain"
	"github.com/larriantoniy/wa_gateway/internal/ports"
	"github.com/larriantoniy/wa_gateway/internal/useCases"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := setupLogger(cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dedupStore, closeDedup := setupDedup(ctx, cfg, logger)

	session, err := wa.NewClient(ctx, &cfg.Session, logger.With("component", "whatsapp"))
	if err != nil {
		logger.Error("wa.NewClient error", "error", err)
		closeDedup()
		os.Exit(1)
	}

	state := domain.NewConnectionState()
	relayClient := relay.NewClient(&cfg.Relay, logger.With("component", "relay"))
	relayUC := useCases.NewRelay(logger.With("component", "relay"), session, relayClient, dedupStore)
	sender := useCases.NewSender(logger.With("component", "sender"), session, cfg.CountryCode, cfg.Bulk.Delay, cfg.Session.CommandTimeout)
	dispatcher := useCases.NewDispatcher(logger.With("component", "dispatcher"), state, relayUC)

	events, err := session.Listen()
	if err != nil {
		logger.Error("session.Listen error", "error", err)
		os.Exit(1)
	}
	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		dispatcher.Run(ctx, events)
	}()

	// ошибка подключения не фатальна: сервер продолжает работать в состоянии not ready
	if err := session.Connect(ctx); err != nil {
		logger.Error("session.Connect error, serving in non-ready state", "error", err)
	}

	h := httpapi.NewHandler(logger.With("component", "http"), state, session, sender, cfg.Session.CommandTimeout)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server started", "port", cfg.Port, "relay_url", cfg.Relay.URL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case err := <-serverErr:
		logger.Error("HTTP server failed", "error", err)
		exitCode = 1
	case <-sigCh:
		logger.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server forced to stop", "error", err)
	}

	cancel()
	session.Close()
	<-dispatchDone
	dispatcher.Wait()
	closeDedup()

	logger.Info("exit")
	os.Exit(exitCode)
}

// setupDedup выбирает Redis, если задан адрес, иначе хранит ID в памяти
func setupDedup(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (ports.DedupStore, func()) {
	if cfg.Redis.Addr == "" {
		logger.Info("dedup: using in-memory store", "ttl", cfg.Dedup.TTL)
		return dedup.NewMemory(cfg.Dedup.TTL), func() {}
	}

	store, err := dedup.NewRedis(ctx, &cfg.Redis, cfg.Dedup.TTL)
	if err != nil {
		logger.Error("dedup: redis unavailable, falling back to memory", "error", err)
		return dedup.NewMemory(cfg.Dedup.TTL), func() {}
	}
	logger.Info("dedup: using redis", "addr", cfg.Redis.Addr, "ttl", cfg.Dedup.TTL)
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Error("dedup: close redis", "error", err)
		}
	}
}

func setupLogger(env string) *slog.Logger {
	var logger *slog.Logger

	switch env {
	case config.EnvDev:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return logger
}
