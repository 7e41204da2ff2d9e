package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	mcp "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alexandertsai/mcp-telegram/internal/config"
	"github.com/alexandertsai/mcp-telegram/internal/mcpserver"
	"github.com/alexandertsai/mcp-telegram/internal/session"
	"github.com/alexandertsai/mcp-telegram/internal/telegram"
)

func main() {
	// Optional .env next to the working directory.
	_ = godotenv.Load()

	cfgDir := config.Dir()
	cfg, err := config.Load(filepath.Join(cfgDir, "config.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// Stdout carries the MCP protocol, so logs go to a file.
	os.MkdirAll(cfgDir, 0700)
	logger, err := buildLogger(filepath.Join(cfgDir, "mcp-telegram.log"), cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store := session.NewStore(cfg.SessionPath())
	if !store.Exists() {
		fmt.Fprintf(os.Stderr, "No Telegram session found at %s.\nRun tg-auth first to log in.\n", store.Path())
		os.Exit(1)
	}

	adapter := telegram.NewAdapter(
		cfg.Telegram.APIID,
		cfg.Telegram.APIHash,
		store,
		cfg.StyleGuide,
		logger,
	)
	defer adapter.Close()

	logger.Info("serving MCP over stdio", zap.String("session", store.Path()))

	srv := mcpserver.New(adapter, logger)
	if err := mcp.ServeStdio(srv); err != nil {
		logger.Error("server error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func buildLogger(path, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(lvl)
	logCfg.OutputPaths = []string{path}
	logCfg.ErrorOutputPaths = []string{path}
	return logCfg.Build()
}
