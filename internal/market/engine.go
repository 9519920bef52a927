// Package market implementa el núcleo contable del mercado pari-mutuel:
// ciclo de vida de la ronda, entrada de apuestas, resolución con reparto
// de ganancias y reclamo de pendientes.
//
// Cada operación pública es una unidad de trabajo: o se aplican todas sus
// mutaciones, o ninguna (ports.Store.Atomic). La autorización, el reloj de
// ledger y las notificaciones son colaboradores inyectados.
package market

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/vmarket/internal/domain"
	"github.com/alejandrodnm/vmarket/internal/ports"
)

// Engine es el orquestador de todas las operaciones públicas del mercado.
type Engine struct {
	store    ports.Store
	auth     ports.Verifier
	clock    ports.LedgerClock
	notifier ports.Notifier
}

// New crea un Engine con todas las dependencias inyectadas.
func New(store ports.Store, auth ports.Verifier, clock ports.LedgerClock, notifier ports.Notifier) *Engine {
	return &Engine{
		store:    store,
		auth:     auth,
		clock:    clock,
		notifier: notifier,
	}
}

// Initialize fija admin y oracle (una sola vez) y siembra las ventanas por
// defecto. El caller debe estar autorizado como admin.
func (e *Engine) Initialize(ctx context.Context, admin, oracle string) error {
	if err := e.auth.Verify(ctx, admin); err != nil {
		return err
	}

	err := e.store.Atomic(ctx, func(s ports.Store) error {
		if _, ok, err := s.Admin(ctx); err != nil {
			return err
		} else if ok {
			return domain.ErrAlreadyInitialized
		}
		if err := s.SetAdmin(ctx, admin); err != nil {
			return err
		}
		if err := s.SetOracle(ctx, oracle); err != nil {
			return err
		}
		return s.SetWindows(ctx, domain.DefaultWindows())
	})
	if err != nil {
		return fmt.Errorf("market.Initialize: %w", err)
	}

	slog.Info("market initialized", "admin", admin, "oracle", oracle)
	return nil
}

// SetWindows cambia las ventanas de apuesta y ejecución. Solo admin, y
// solo afecta a rondas creadas después.
func (e *Engine) SetWindows(ctx context.Context, bet, run uint32) error {
	w := domain.Windows{Bet: bet, Run: run}

	err := e.store.Atomic(ctx, func(s ports.Store) error {
		admin, ok, err := s.Admin(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrAdminNotSet
		}
		if err := e.auth.Verify(ctx, admin); err != nil {
			return err
		}
		if err := w.Validate(); err != nil {
			return err
		}
		return s.SetWindows(ctx, w)
	})
	if err != nil {
		return fmt.Errorf("market.SetWindows: %w", err)
	}

	if err := e.notifier.WindowsUpdated(ctx, w); err != nil {
		slog.Warn("windows-updated notification failed", "err", err)
	}
	return nil
}

// CreateRound crea la ronda nueva. modeSel: 0 = Up/Down, 1 = Precision.
// Pisa cualquier ronda anterior y limpia sus posiciones sin resolverlas —
// decisión deliberada: el admin puede abandonar una ronda muerta.
func (e *Engine) CreateRound(ctx context.Context, startPrice uint64, modeSel uint32) error {
	if startPrice == 0 {
		return fmt.Errorf("market.CreateRound: %w", domain.ErrInvalidPrice)
	}
	mode, err := domain.ModeFromSelector(modeSel)
	if err != nil {
		return fmt.Errorf("market.CreateRound: %w", err)
	}

	var created domain.RoundCreated
	err = e.store.Atomic(ctx, func(s ports.Store) error {
		admin, ok, err := s.Admin(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrAdminNotSet
		}
		if err := e.auth.Verify(ctx, admin); err != nil {
			return err
		}

		windows, ok, err := s.Windows(ctx)
		if err != nil {
			return err
		}
		if !ok {
			windows = domain.DefaultWindows()
		}

		round, err := domain.NewRound(startPrice, e.clock.Sequence(), windows, mode)
		if err != nil {
			return err
		}

		if err := s.SetActiveRound(ctx, round); err != nil {
			return err
		}
		// Limpieza incondicional: posiciones de una ronda previa sin
		// resolver quedan abandonadas para siempre.
		if err := s.ClearRoundPositions(ctx); err != nil {
			return err
		}

		created = domain.RoundCreated{
			PriceStart:   startPrice,
			BetEndLedger: round.BetEndLedger,
			EndLedger:    round.EndLedger,
			Mode:         mode,
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("market.CreateRound: %w", err)
	}

	slog.Info("round created",
		"mode", mode.String(),
		"start_price", startPrice,
		"bet_end", created.BetEndLedger,
		"end", created.EndLedger,
	)
	if err := e.notifier.RoundCreated(ctx, created); err != nil {
		slog.Warn("round-created notification failed", "err", err)
	}
	return nil
}

// ActiveRound devuelve la ronda activa, si la hay. Lectura pura.
func (e *Engine) ActiveRound(ctx context.Context) (domain.Round, bool, error) {
	return e.store.ActiveRound(ctx)
}

// Admin devuelve la cuenta admin, si está fijada.
func (e *Engine) Admin(ctx context.Context) (string, bool, error) {
	return e.store.Admin(ctx)
}

// Oracle devuelve la cuenta oracle, si está fijada.
func (e *Engine) Oracle(ctx context.Context) (string, bool, error) {
	return e.store.Oracle(ctx)
}
