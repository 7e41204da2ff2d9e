// Command tg-auth performs the one-time interactive Telegram login and
// persists the resulting session for the MCP server. If the stored
// session is still valid it exits immediately without prompting.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/gotd/td/telegram/auth"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	tgclient "github.com/gotd/td/telegram"

	"github.com/alexandertsai/mcp-telegram/internal/config"
	"github.com/alexandertsai/mcp-telegram/internal/session"
	"github.com/alexandertsai/mcp-telegram/internal/telegram"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(filepath.Join(config.Dir(), "config.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := authenticate(ctx, cfg, logger); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "Authentication failed: %v\n", err)
		}
		os.Exit(1)
	}
}

func authenticate(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	prompter := telegram.NewTerminalPrompter()
	flowAuth := telegram.NewFlowAuth(prompter, cfg.Telegram.Phone, cfg.Telegram.Password)

	// The session path derives from the phone, so settle it up front.
	phone, err := flowAuth.Phone(ctx)
	if err != nil {
		return err
	}
	cfg.Telegram.Phone = phone

	store := session.NewStore(cfg.SessionPath())

	client := tgclient.NewClient(cfg.Telegram.APIID, cfg.Telegram.APIHash, tgclient.Options{
		Logger:         logger.Named("gotd"),
		SessionStorage: store,
	})

	return client.Run(ctx, func(ctx context.Context) error {
		status, err := client.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("auth status: %w", err)
		}
		if status.Authorized {
			fmt.Fprintf(os.Stderr, "Already authenticated. Session stored at %s.\n", store.Path())
			return nil
		}

		flow := auth.NewFlow(flowAuth, auth.SendCodeOptions{})
		if err := flow.Run(ctx, client.Auth()); err != nil {
			return err
		}

		status, err = client.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("auth status: %w", err)
		}
		if !status.Authorized {
			return errors.New("login flow finished but account is not authorized")
		}

		fmt.Fprintf(os.Stderr, "Authentication successful. Session saved to %s.\nYou can now start the MCP server.\n", store.Path())
		return nil
	})
}
