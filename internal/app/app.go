package app

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mygeone2/quotes-fake-api/internal/config"
	"github.com/mygeone2/quotes-fake-api/internal/server"
)

const defaultCfgPath = "./config/config.json"

// Start parses flags, loads configuration and builds an initialized App.
// The caller runs and shuts it down.
func Start(args []string) (*server.App, error) {
	fs := flag.NewFlagSet("quotes-fake-api", flag.ContinueOnError)
	var (
		port     = fs.Int("port", 0, "Port number (overrides config and PORT)")
		cfgPath  = fs.String("config", defaultCfgPath, "Path to a JSON or YAML config file")
		helpFlag = fs.Bool("help", false, "Show help message")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  quotes-fake-api [--port <N>] [--config <path>]\n")
		fmt.Fprintf(os.Stderr, "  quotes-fake-api --help\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fmt.Fprintf(os.Stderr, "  --port N         Port number\n")
		fmt.Fprintf(os.Stderr, "  --config PATH    Config file (default %s)\n", defaultCfgPath)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *helpFlag {
		fs.Usage()
		return nil, flag.ErrHelp
	}

	slog.Info("Loading configuration...", "path", *cfgPath)
	cfg, err := config.GetConfig(*cfgPath)
	if err != nil {
		slog.Error("failed to get config", "error", err)
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	if *port > 0 {
		cfg.App.Port = *port
	}

	slog.SetDefault(NewLogger(cfg.Logging, os.Stdout))
	slog.Info("Configuration loaded", "port", cfg.App.Port, "quote_mode", cfg.App.QuoteMode, "db_driver", cfg.Repository.Driver)

	slog.Info("Creating application instance...")
	app := server.NewApp(cfg)

	if err := app.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize app: %w", err)
	}
	return app, nil
}

// NewLogger builds a slog logger with the configured level and format
func NewLogger(cfg config.Logging, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
