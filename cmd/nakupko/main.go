package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/erazemk/nakupko/internal/bot"
	"github.com/erazemk/nakupko/internal/config"
	"github.com/erazemk/nakupko/internal/db"
	"github.com/erazemk/nakupko/internal/notion"
	"github.com/erazemk/nakupko/internal/parser"
	"github.com/erazemk/nakupko/internal/slack"
	"github.com/erazemk/nakupko/internal/store"
	"github.com/erazemk/nakupko/internal/web"
)

func main() {
	fs := flag.NewFlagSet("nakupko", flag.ContinueOnError)

	var configPath string
	fs.StringVar(&configPath, "config", "", "")
	fs.StringVar(&configPath, "c", "", "")

	var addr string
	fs.StringVar(&addr, "addr", "", "")
	fs.StringVar(&addr, "a", "", "")

	var debug bool
	fs.BoolVar(&debug, "debug", false, "")
	fs.BoolVar(&debug, "d", false, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: nakupko [flags]

Flags:
  -c, -config <path>      YAML config file (default: none, env vars only)
  -a, -addr <host:port>   listen address (overrides config, default: :3000)
  -d, -debug              enable debug logging
  -h, -help               show this help and exit

Environment:
  SLACK_BOT_TOKEN, SLACK_SIGNING_SECRET, NOTION_API_KEY,
  NOTION_DATABASE_ID, PORT — override the matching config values.
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if debug {
		cfg.Debug = true
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	itemStore, closeStore, err := newStore(cfg, logger)
	if err != nil {
		logger.Error("failed to set up record store", zap.Error(err))
		os.Exit(1)
	}
	defer closeStore()

	messenger := slack.NewClient(cfg.Slack.BotToken)
	handler := web.NewHandler(parser.New(), bot.New(itemStore, logger), messenger, cfg.Slack.SigningSecret, logger)
	router := web.LoggingMiddleware(logger)(web.NewRouter(handler))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	logger.Info("server started",
		zap.String("addr", cfg.Addr),
		zap.String("backend", cfg.Store.Backend))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// newLogger builds the process logger: JSON production output, switched to
// debug level and console encoding under -debug.
func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// newStore builds the configured record store backend. The returned close
// function releases backend resources (a no-op for Notion).
func newStore(cfg config.Config, logger *zap.Logger) (store.Store, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendNotion:
		client := notion.New(cfg.Notion.APIKey, cfg.Notion.DatabaseID)

		// Probe the database so misconfiguration shows up at startup,
		// not on the first mention.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.CheckDatabase(ctx); err != nil {
			logger.Warn("notion database check failed", zap.Error(err))
		} else {
			logger.Info("notion database ready", zap.String("database", cfg.Notion.DatabaseID))
		}
		return client, func() {}, nil

	case config.BackendSQLite:
		database, err := db.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		if err := db.EnsureSchema(database); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("ensuring schema: %w", err)
		}
		logger.Info("database ready", zap.String("path", cfg.Store.SQLitePath))
		return store.NewSQLite(database), func() { database.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
