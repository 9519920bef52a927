package market

// resolve.go — el motor de resolución: dado el precio final del oráculo,
// calcula ganadores, acredita ganancias pendientes, actualiza estadísticas
// y retira la ronda. Todo dentro de una transacción: un desborde a mitad
// de reparto no deja pagos parciales.

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/alejandrodnm/vmarket/internal/domain"
	"github.com/alejandrodnm/vmarket/internal/ports"
)

// ResolveRound resuelve la ronda activa con el precio final. Solo oracle,
// y solo a partir de end_ledger. La ronda y todas sus posiciones quedan
// consumidas exactamente una vez, gane quien gane.
func (e *Engine) ResolveRound(ctx context.Context, finalPrice uint64) error {
	if finalPrice == 0 {
		return fmt.Errorf("market.ResolveRound: %w", domain.ErrInvalidPrice)
	}

	var resolved domain.Round
	err := e.store.Atomic(ctx, func(s ports.Store) error {
		oracle, ok, err := s.Oracle(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrOracleNotSet
		}
		if err := e.auth.Verify(ctx, oracle); err != nil {
			return err
		}

		round, ok, err := s.ActiveRound(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNoActiveRound
		}
		if !round.Resolvable(e.clock.Sequence()) {
			return domain.ErrRoundNotEnded
		}

		switch round.Mode {
		case domain.ModeUpDown:
			err = e.resolveUpDown(ctx, s, round, finalPrice)
		case domain.ModePrecision:
			err = e.resolvePrecision(ctx, s, finalPrice)
		}
		if err != nil {
			return err
		}

		resolved = round
		// La ronda se consume entera: slot y posiciones fuera.
		if err := s.RemoveActiveRound(ctx); err != nil {
			return err
		}
		return s.ClearRoundPositions(ctx)
	})
	if err != nil {
		return fmt.Errorf("market.ResolveRound: %w", err)
	}

	slog.Info("round resolved",
		"mode", resolved.Mode.String(),
		"start_price", resolved.PriceStart,
		"final_price", finalPrice,
	)
	return nil
}

// resolveUpDown reparte el pool perdedor entre los ganadores a prorrata.
// Precio sin cambio: todos recuperan su apuesta y las stats no se tocan.
// Pool ganador vacío: no-op — las apuestas perdedoras quedan muertas (ver
// nota en DESIGN.md).
func (e *Engine) resolveUpDown(ctx context.Context, s ports.Store, round domain.Round, finalPrice uint64) error {
	positions, err := s.UpDownPositions(ctx)
	if err != nil {
		return err
	}

	// Orden estable para logs y pagos reproducibles.
	accounts := make([]string, 0, len(positions))
	for a := range positions {
		accounts = append(accounts, a)
	}
	sort.Strings(accounts)

	if finalPrice == round.PriceStart {
		for _, account := range accounts {
			if err := creditPending(ctx, s, account, positions[account].Amount); err != nil {
				return err
			}
		}
		return nil
	}

	winningSide := domain.SideDown
	winningPool, losingPool := round.PoolDown, round.PoolUp
	if finalPrice > round.PriceStart {
		winningSide = domain.SideUp
		winningPool, losingPool = round.PoolUp, round.PoolDown
	}

	if winningPool == 0 {
		return nil
	}

	for _, account := range accounts {
		pos := positions[account]
		if pos.Side != winningSide {
			if err := recordResult(ctx, s, account, false); err != nil {
				return err
			}
			continue
		}

		payout, err := domain.UpDownPayout(pos.Amount, winningPool, losingPool)
		if err != nil {
			return err
		}
		if err := creditPending(ctx, s, account, payout); err != nil {
			return err
		}
		if err := recordResult(ctx, s, account, true); err != nil {
			return err
		}
	}
	return nil
}

// resolvePrecision acredita floor(pot/ganadores) a cada predicción a
// distancia mínima; el resto de la división se pierde. Sin predicciones
// es un no-op.
func (e *Engine) resolvePrecision(ctx context.Context, s ports.Store, finalPrice uint64) error {
	preds, err := s.PrecisionPredictions(ctx)
	if err != nil {
		return err
	}
	if len(preds) == 0 {
		return nil
	}

	out, err := domain.ResolvePrecision(preds, finalPrice)
	if err != nil {
		return err
	}

	for i, p := range preds {
		if out.Winners[i] {
			if err := creditPending(ctx, s, p.Account, out.Payout); err != nil {
				return err
			}
			if err := recordResult(ctx, s, p.Account, true); err != nil {
				return err
			}
			continue
		}
		if err := recordResult(ctx, s, p.Account, false); err != nil {
			return err
		}
	}
	return nil
}

// creditPending acumula sobre las ganancias pendientes con suma comprobada.
func creditPending(ctx context.Context, s ports.Store, account string, amount int64) error {
	existing, err := s.PendingWinnings(ctx, account)
	if err != nil {
		return err
	}
	newPending, err := domain.CheckedAdd(existing, amount)
	if err != nil {
		return err
	}
	return s.SetPendingWinnings(ctx, account, newPending)
}

// recordResult aplica victoria o derrota a las stats de la cuenta.
func recordResult(ctx context.Context, s ports.Store, account string, won bool) error {
	stats, err := s.UserStats(ctx, account)
	if err != nil {
		return err
	}
	if won {
		stats.RecordWin()
	} else {
		stats.RecordLoss()
	}
	return s.SetUserStats(ctx, account, stats)
}
