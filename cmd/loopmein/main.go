// Copyright 2026 The LoopMeIn Authors
// SPDX-License-Identifier: Apache-2.0

// Command loopmein runs the LoopMeIn agent: it connects to Slack in
// Socket Mode, watches for newly created channels, and invites users
// whose patterns match the channel name.
//
// Both tokens are required and come from the environment:
//
//	SLACK_APP_TOKEN  app-level token (xapp-...) for the stream handshake
//	SLACK_BOT_TOKEN  bot token (xoxb-...) for Web API calls
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/loopmein/loopmein/lib/config"
	"github.com/loopmein/loopmein/lib/secret"
	"github.com/loopmein/loopmein/slack"
	"github.com/loopmein/loopmein/store"
	"github.com/loopmein/loopmein/watch"
)

// version is set via -ldflags at build time:
//
//	go build -ldflags "-X main.version=$(git describe --tags --always)"
var version = "0.1.0-dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  string
		dbPath      string
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "", "config file (default: $LOOPMEIN_CONFIG, or built-in defaults)")
	flag.StringVar(&dbPath, "db", "", "SQLite database file (overrides the config file)")
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("loopmein %s\n", version)
		return nil
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	resyncInterval, err := cfg.ResyncInterval()
	if err != nil {
		return err
	}
	retryDelay, err := cfg.RetryDelay()
	if err != nil {
		return err
	}

	appToken, err := secret.FromEnv("SLACK_APP_TOKEN")
	if err != nil {
		return err
	}
	defer appToken.Close()
	botToken, err := secret.FromEnv("SLACK_BOT_TOKEN")
	if err != nil {
		return err
	}
	defer botToken.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := slack.NewClient(slack.ClientConfig{
		BaseURL:  cfg.Slack.APIURL,
		AppToken: appToken,
		BotToken: botToken,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	db, err := store.Open(store.Config{
		Path:   cfg.Database.Path,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("closing store", "error", err)
		}
	}()

	dispatcher := watch.NewDispatcher(watch.DispatcherConfig{
		Store:  db,
		Slack:  client,
		Logger: logger,
	})
	supervisor := watch.NewSupervisor(watch.SupervisorConfig{
		Slack:      client,
		Handler:    dispatcher,
		RetryDelay: retryDelay,
		Logger:     logger,
	})
	resyncer := watch.NewResyncer(watch.ResyncerConfig{
		Slack:    client,
		Store:    db,
		Interval: resyncInterval,
		Logger:   logger,
	})

	logger.Info("loopmein starting",
		"version", version,
		"database", cfg.Database.Path,
		"resync_interval", resyncInterval,
		"retry_delay", retryDelay,
	)

	go resyncer.Run(ctx)

	streamDone := make(chan error, 1)
	go func() {
		streamDone <- supervisor.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		<-streamDone
		return nil
	case err := <-streamDone:
		if errors.Is(err, context.Canceled) {
			return nil
		}
		// The supervisor only returns early on a fatal error.
		return err
	}
}

// loadConfig resolves the config from the --config flag, then the
// LOOPMEIN_CONFIG environment variable, then built-in defaults.
func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}
