// Command reminder runs the reminder worker: a periodic sweep over locked
// boxes emitting tiered nag notifications.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/lockboxhq/backend/internal/config"
	"github.com/lockboxhq/backend/internal/logging"
	"github.com/lockboxhq/backend/internal/push"
	"github.com/lockboxhq/backend/internal/reminder"
	"github.com/lockboxhq/backend/internal/store/memory"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging (overrides LOG_LEVEL)")
	flag.Parse()

	cfg, err := config.Load(nil)
	if err != nil {
		panic(err)
	}
	if *debug {
		cfg.LogLevel = "debug"
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, "lockbox-reminder")
	cfg.LogConfig(logger)

	gateway := push.NewGateway(push.Config{
		URL:        cfg.PushGatewayURL,
		Timeout:    cfg.PushTimeout,
		RatePerSec: cfg.PushRatePerSec,
	}, logger)

	boxStore := memory.NewBoxStore()
	tokenStore := memory.NewPushTokenStore()
	worker := reminder.New(boxStore, tokenStore, gateway, nil, logger)

	ticker := time.NewTicker(cfg.ReminderSweepInterval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	logger.Info().Dur("interval", cfg.ReminderSweepInterval).Msg("reminder worker running")

	for {
		select {
		case <-ticker.C:
			worker.Sweep(ctx)
		case <-sigCh:
			logger.Info().Msg("shutting down reminder worker")
			return
		}
	}
}
