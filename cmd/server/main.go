// Command server runs the tournament site: landing page, registration API,
// leaderboard and the live registration feed.
//
// @title Legends of Victory Tournament API
// @version 1.0
// @BasePath /api/v1
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mettlestate/tournament-site/internal/config"
	"github.com/mettlestate/tournament-site/internal/handlers"
	"github.com/mettlestate/tournament-site/internal/livefeed"
	"github.com/mettlestate/tournament-site/internal/logging"
	"github.com/mettlestate/tournament-site/internal/logic"
	"github.com/mettlestate/tournament-site/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := logic.NewRegistrationStore(cfg.RegistrationSeed)

	registrations := logic.NewRegistrationService(logic.RegistrationServiceConfig{
		Counter:        store,
		Remote:         logic.SimulatedRemote(cfg.SubmitLatency),
		SuccessDisplay: cfg.SuccessDisplay,
		Logger:         logger.Named("registration"),
	})

	leaderboard := logic.NewLeaderboardLoader(logic.LeaderboardConfig{
		URL:        cfg.LeaderboardURL,
		Limit:      cfg.LeaderboardLimit,
		Timeout:    cfg.LeaderboardTimeout,
		MinDelay:   cfg.LeaderboardMinDelay,
		MaxRetries: cfg.LeaderboardMaxRetries,
		RetryDelay: cfg.LeaderboardRetryDelay,
		Logger:     logger.Named("leaderboard"),
	})
	leaderboard.Start(ctx)

	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount: cfg.WorkerCount,
		QueueSize:   cfg.QueueSize,
		Submitter:   registrations,
		Logger:      logger.Named("worker"),
	})
	pool.Start(ctx)

	hub := livefeed.NewHub(store, cfg.MaxRegistrations, logger.Named("live"), cfg.AllowedOrigins)
	go hub.Run(ctx)

	h := handlers.New(handlers.Config{
		WorkerPool:       pool,
		QueueCapacity:    cfg.QueueSize,
		MaxRegistrations: cfg.MaxRegistrations,
		Logger:           logger.Named("http"),
		Counter:          store,
		Registrations:    registrations,
		Leaderboard:      leaderboard,
		Content:          logic.NewContentService(store, cfg.MaxRegistrations, cfg.EventStart),
	})

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: handlers.NewRouter(h, handlers.RouterConfig{
			AllowedOrigins: cfg.AllowedOrigins,
			Live:           hub,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("Server listening",
			"port", cfg.Port,
			"env", cfg.Env,
			"registrations", store.Read(),
			"maxRegistrations", cfg.MaxRegistrations,
			"eventStart", cfg.EventStart,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	sugar.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("HTTP shutdown failed", "error", err)
	}
	leaderboard.Close()
	pool.Stop()

	sugar.Infow("Server stopped", "registrations", store.Read())
	return nil
}
