package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/vmarket/config"
	"github.com/alejandrodnm/vmarket/internal/adapters/auth"
	"github.com/alejandrodnm/vmarket/internal/adapters/clock"
	"github.com/alejandrodnm/vmarket/internal/adapters/notify"
	"github.com/alejandrodnm/vmarket/internal/adapters/storage"
	"github.com/alejandrodnm/vmarket/internal/market"
	"github.com/alejandrodnm/vmarket/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	demo := flag.Bool("demo", false, "run a simulated betting session and exit")
	mode := flag.String("mode", "updown", "demo round mode: updown|precision")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("vmarket starting",
		"config", *configPath,
		"dsn", cfg.Storage.DSN,
		"demo", *demo,
	)

	store, err := storage.NewSQLiteStore(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	console := notify.NewConsole()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *demo {
		if err := runDemo(ctx, store, console, cfg, *mode); err != nil {
			slog.Error("demo failed", "err", err)
			os.Exit(1)
		}
		return
	}

	if err := printStatus(ctx, store, console, cfg); err != nil {
		slog.Error("status failed", "err", err)
		os.Exit(1)
	}
}

// printStatus vuelca la ronda activa (si la hay) y los saldos de todas las
// cuentas conocidas.
func printStatus(ctx context.Context, store *storage.SQLiteStore, console *notify.Console, cfg *config.Config) error {
	clk := clock.NewWall(time.Now(), cfg.LedgerInterval())
	e := market.New(store, auth.Open{}, clk, console)

	round, ok, err := e.ActiveRound(ctx)
	if err != nil {
		return err
	}
	if ok {
		positions, err := e.UpDownPositions(ctx)
		if err != nil {
			return err
		}
		preds, err := e.PrecisionPredictions(ctx)
		if err != nil {
			return err
		}
		console.PrintRound(round, positions, preds)
	} else {
		fmt.Println("no active round")
	}

	rows, err := statsRows(ctx, store)
	if err != nil {
		return err
	}
	console.PrintStats(rows)
	return nil
}

// statsRows arma la tabla de saldos/stats a partir de las cuentas con
// registro en el store.
func statsRows(ctx context.Context, store ports.Store) ([]notify.StatsRow, error) {
	accounts, err := store.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]notify.StatsRow, 0, len(accounts))
	for _, acc := range accounts {
		balance, _, err := store.Balance(ctx, acc)
		if err != nil {
			return nil, err
		}
		pending, err := store.PendingWinnings(ctx, acc)
		if err != nil {
			return nil, err
		}
		stats, err := store.UserStats(ctx, acc)
		if err != nil {
			return nil, err
		}
		rows = append(rows, notify.StatsRow{
			Account: acc,
			Balance: balance,
			Pending: pending,
			Stats:   stats,
		})
	}
	return rows, nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
