// Command api serves the HTTP surface over the box and invitation cores.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/lockboxhq/backend/internal/box"
	"github.com/lockboxhq/backend/internal/config"
	"github.com/lockboxhq/backend/internal/eventbus"
	"github.com/lockboxhq/backend/internal/httpapi"
	"github.com/lockboxhq/backend/internal/invitation"
	"github.com/lockboxhq/backend/internal/logging"
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

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, "lockbox-api")
	cfg.LogConfig(logger)

	var publisher eventbus.Publisher
	if cfg.TestSNS {
		publisher = eventbus.NoopPublisher{Logger: logger}
	} else {
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
		publisher = client
	}

	boxStore := memory.NewBoxStore()
	invStore := memory.NewInvitationStore()
	tokenStore := memory.NewPushTokenStore()

	boxSvc := box.New(boxStore, publisher, cfg.SNSTopicARN, nil, logger)
	invSvc := invitation.New(invStore, publisher, cfg.SNSTopicARN, nil, logger)

	handler := httpapi.New(boxSvc, invSvc, tokenStore, logger, cfg.RemoveBasePath)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutting down HTTP server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("error during HTTP server shutdown")
	}
}
