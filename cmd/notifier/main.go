// Command notifier runs the notification worker: it subscribes to the event
// bus and dispatches a push on every box_locked event.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/lockboxhq/backend/internal/config"
	"github.com/lockboxhq/backend/internal/eventbus"
	"github.com/lockboxhq/backend/internal/logging"
	"github.com/lockboxhq/backend/internal/notifier"
	"github.com/lockboxhq/backend/internal/push"
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

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, "lockbox-notifier")
	cfg.LogConfig(logger)

	if cfg.TestSNS {
		logger.Fatal().Msg("TEST_SNS=true bypasses the event bus; the notifier has nothing to subscribe to")
	}

	client, err := eventbus.Connect(eventbus.Config{
		URL:            cfg.NATSURL,
		MaxReconnects:  10,
		ReconnectWait:  time.Second,
		ConnectTimeout: 5 * time.Second,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to event bus")
	}
	defer client.Close()

	gateway := push.NewGateway(push.Config{
		URL:        cfg.PushGatewayURL,
		Timeout:    cfg.PushTimeout,
		RatePerSec: cfg.PushRatePerSec,
	}, logger)

	tokenStore := memory.NewPushTokenStore()
	worker := notifier.New(tokenStore, gateway, logger)

	unsubscribe, err := worker.Run(cfg.SNSTopicARN, client)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to subscribe notification worker")
	}
	defer unsubscribe()

	logger.Info().Str("topic", cfg.SNSTopicARN).Msg("notification worker running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Info().Msg("shutting down notification worker")
}
