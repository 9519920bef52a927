package main

// demo.go — sesión simulada: acuña cuentas, corre varias rondas con
// apuestas aleatorias a ritmo limitado, las resuelve con un precio que
// deriva del anterior y reclama las ganancias. Sirve para poblar un
// vmarket.db con datos creíbles y ver el ciclo completo por consola.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/alejandrodnm/vmarket/config"
	"github.com/alejandrodnm/vmarket/internal/adapters/auth"
	"github.com/alejandrodnm/vmarket/internal/adapters/clock"
	"github.com/alejandrodnm/vmarket/internal/adapters/notify"
	"github.com/alejandrodnm/vmarket/internal/domain"
	"github.com/alejandrodnm/vmarket/internal/market"
	"github.com/alejandrodnm/vmarket/internal/ports"
)

func runDemo(ctx context.Context, store ports.Store, console *notify.Console, cfg *config.Config, mode string) error {
	var modeSel uint32
	switch mode {
	case "updown":
		modeSel = 0
	case "precision":
		modeSel = 1
	default:
		return fmt.Errorf("demo: unknown mode %q (want updown|precision)", mode)
	}

	// Reloj manual: la demo avanza los ledgers a voluntad en vez de
	// esperar al reloj de pared.
	clk := clock.NewManual(1)
	e := market.New(store, auth.Open{}, clk, console)

	err := e.Initialize(ctx, cfg.Market.Admin, cfg.Market.Oracle)
	if err != nil && !errors.Is(err, domain.ErrAlreadyInitialized) {
		return err
	}
	if err := e.SetWindows(ctx, cfg.Market.BetWindow, cfg.Market.RunWindow); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	bettors := make([]string, cfg.Demo.Bettors)
	for i := range bettors {
		bettors[i] = "GDEMO-" + uuid.NewString()[:8]
		if _, err := e.MintInitial(ctx, bettors[i]); err != nil {
			return err
		}
	}
	slog.Info("demo accounts minted", "bettors", len(bettors))

	limiter := rate.NewLimiter(rate.Limit(cfg.Demo.BetsPerSecond), 1)

	price := cfg.Demo.StartPrice
	for r := 0; r < cfg.Demo.Rounds; r++ {
		if err := e.CreateRound(ctx, price, modeSel); err != nil {
			return err
		}

		for _, b := range bettors {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			amount := int64(rng.Intn(100)+1) * 1_0000000

			var err error
			if modeSel == 0 {
				side := domain.SideUp
				if rng.Intn(2) == 1 {
					side = domain.SideDown
				}
				err = e.PlaceBet(ctx, b, amount, side)
			} else {
				err = e.PlacePrecisionPrediction(ctx, b, amount, jitterPrice(rng, price))
			}
			// Un apostador arruinado tras varias rondas no corta la demo.
			if err != nil && !errors.Is(err, domain.ErrInsufficientBalance) {
				return err
			}
		}

		round, _, err := e.ActiveRound(ctx)
		if err != nil {
			return err
		}
		positions, err := e.UpDownPositions(ctx)
		if err != nil {
			return err
		}
		preds, err := e.PrecisionPredictions(ctx)
		if err != nil {
			return err
		}
		console.PrintRound(round, positions, preds)

		clk.Advance(cfg.Market.RunWindow)
		final := jitterPrice(rng, price)
		if err := e.ResolveRound(ctx, final); err != nil {
			return err
		}
		price = final

		for _, b := range bettors {
			if _, err := e.ClaimWinnings(ctx, b); err != nil {
				return err
			}
		}
	}

	rows, err := statsRows(ctx, store)
	if err != nil {
		return err
	}
	console.PrintStats(rows)

	slog.Info("demo complete", "rounds", cfg.Demo.Rounds, "final_price", price)
	return nil
}

// jitterPrice mueve el precio ±5% (mínimo ±1) sin salirse del rango de
// predicción válido.
func jitterPrice(rng *rand.Rand, base uint64) uint64 {
	delta := int64(base / 20)
	if delta == 0 {
		delta = 1
	}
	p := int64(base) + rng.Int63n(2*delta+1) - delta
	if p < 1 {
		p = 1
	}
	if uint64(p) > domain.MaxPredictedPrice {
		return domain.MaxPredictedPrice
	}
	return uint64(p)
}
