package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/suiboard/suiboard-backend/internal/board/api"
	"github.com/suiboard/suiboard-backend/internal/board/config"
	"github.com/suiboard/suiboard-backend/internal/board/ledger"
	"github.com/suiboard/suiboard-backend/internal/board/metrics"
	"github.com/suiboard/suiboard-backend/internal/board/overlay"
	"github.com/suiboard/suiboard-backend/internal/board/refresh"
	"github.com/suiboard/suiboard-backend/internal/board/service"
	"github.com/suiboard/suiboard-backend/internal/board/types"
	"github.com/suiboard/suiboard-backend/pkg/logging"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Init()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize config: %v", err))
	}

	logLevel := logging.Production
	if cfg.DevMode {
		logLevel = logging.Development
	}
	if err := logging.InitServiceLogger(logging.LoggerConfig{
		ProcessName: logging.DaemonProcess,
		Environment: logLevel,
	}); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logging.Shutdown()
	logger := logging.GetServiceLogger()

	logger.Info("Starting board daemon...",
		"rpc", cfg.RPCURL,
		"port", cfg.APIPort,
		"package", cfg.PackageID,
	)

	queries, err := ledger.NewClient(cfg.RPCURL, cfg.FinalityWait, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize ledger client: %v", err)
	}

	overlayStore := newOverlayStore(cfg, logger)

	coord := refresh.NewCoordinator(logger)
	svc := service.New(queries, overlayStore, cfg, coord, logger)

	go metrics.TrackUptime()

	// Periodic refresh keeps the shared views warm between mutations.
	scheduler := cron.New()
	spec := fmt.Sprintf("@every %s", cfg.RefreshEvery)
	_, err = scheduler.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RefreshEvery)
		defer cancel()
		coord.Refresh(ctx,
			types.QueryLeaderboard,
			types.QueryActivity,
			types.QueryProposals,
			types.QueryListings,
			types.QueryStakingStats,
		)
	})
	if err != nil {
		logger.Fatalf("Failed to schedule refresh job: %v", err)
	}
	scheduler.Start()

	server := api.NewServer(svc, cfg.APIPort, logger)

	var wg sync.WaitGroup
	serverErrors := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Start(); err != nil {
			serverErrors <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("Server error received", "error", err)
	case sig := <-shutdown:
		logger.Info("Received shutdown signal", "signal", sig.String())
	}

	performGracefulShutdown(server, scheduler, &wg, logger)
}

// newOverlayStore prefers Redis and falls back to the local file store, so a
// missing Redis never blocks startup.
func newOverlayStore(cfg *config.Config, logger logging.Logger) overlay.Store {
	if cfg.RedisURL != "" {
		store, err := overlay.NewRedisStore(cfg.RedisURL, logger)
		if err == nil {
			logger.Info("Using Redis overlay store")
			return store
		}
		logger.Warnf("Redis unavailable, falling back to file overlay store: %v", err)
	}
	return overlay.NewFileStore(cfg.OverlayFile, logger)
}

func performGracefulShutdown(server *api.Server, scheduler *cron.Cron, wg *sync.WaitGroup, logger logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	<-scheduler.Stop().Done()

	if err := server.Stop(ctx); err != nil {
		logger.Errorf("Failed to stop API server gracefully: %v", err)
	}

	wg.Wait()
	logger.Info("Shutdown complete")
}
