package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alekspetrov/goaltrack/internal/bot"
	"github.com/alekspetrov/goaltrack/internal/config"
	"github.com/alekspetrov/goaltrack/internal/digest"
	"github.com/alekspetrov/goaltrack/internal/identity"
	"github.com/alekspetrov/goaltrack/internal/logging"
	"github.com/alekspetrov/goaltrack/internal/storage"
	"github.com/alekspetrov/goaltrack/internal/telegram"
)

func newRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the bot's long-poll loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "path to config file")
	return cmd
}

func newInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("config already exists at %s", configPath)
			}
			if err := config.Save(config.DefaultConfig(), configPath); err != nil {
				return err
			}
			fmt.Printf("Wrote default config to %s\n", configPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "path to config file")
	return cmd
}

func runBot(configPath string) error {
	// .env is optional; config values can reference the loaded variables.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logging.Init(cfg.Logging); err != nil {
		return fmt.Errorf("failed to init logging: %w", err)
	}

	store, err := storage.NewStore(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	identities, err := identity.NewStore(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer func() { _ = identities.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := telegram.NewClient(cfg.Telegram.BotToken)
	if err := client.CheckSingleton(ctx); err != nil {
		return err
	}

	handler := bot.NewHandler(client, store, identities)
	transport := telegram.NewTransport(client, handler)
	transport.StartPolling(ctx)

	scheduler := digest.NewScheduler(
		digest.NewGenerator(identities, store, client, cfg.Digest.HorizonDays),
		cfg.Digest,
	)
	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start digest scheduler: %w", err)
	}

	logging.WithComponent("main").Info("Bot started", slog.String("config", configPath))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logging.WithComponent("main").Info("Shutting down", slog.String("signal", sig.String()))
	cancel()
	scheduler.Stop()
	transport.Stop()

	return nil
}
