package market

// bets.go — entrada de apuestas contra la ronda activa. Dos vías según el
// modo de la ronda: posición Up/Down contra los pools, o predicción de
// precio exacto en la lista ordenada. El débito del saldo y el registro de
// la posición van en la misma transacción.

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/vmarket/internal/domain"
	"github.com/alejandrodnm/vmarket/internal/ports"
)

// PlaceBet registra una apuesta Up/Down. Una por cuenta y ronda; debita el
// saldo y suma al pool del lado elegido con aritmética comprobada.
func (e *Engine) PlaceBet(ctx context.Context, account string, amount int64, side domain.BetSide) error {
	if err := e.auth.Verify(ctx, account); err != nil {
		return err
	}
	if amount <= 0 {
		return fmt.Errorf("market.PlaceBet: %w", domain.ErrInvalidBetAmount)
	}
	if err := side.Valid(); err != nil {
		return fmt.Errorf("market.PlaceBet: %w", err)
	}

	err := e.store.Atomic(ctx, func(s ports.Store) error {
		round, ok, err := s.ActiveRound(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNoActiveRound
		}
		if round.Mode != domain.ModeUpDown {
			return domain.ErrWrongMode
		}
		if !round.BettingOpen(e.clock.Sequence()) {
			return domain.ErrRoundEnded
		}

		balance, _, err := s.Balance(ctx, account)
		if err != nil {
			return err
		}
		if balance < amount {
			return domain.ErrInsufficientBalance
		}

		positions, err := s.UpDownPositions(ctx)
		if err != nil {
			return err
		}
		if _, exists := positions[account]; exists {
			return domain.ErrAlreadyBet
		}

		newBalance, err := domain.CheckedSub(balance, amount)
		if err != nil {
			return err
		}
		if err := s.SetBalance(ctx, account, newBalance); err != nil {
			return err
		}

		pos := domain.UserPosition{Amount: amount, Side: side}
		if err := s.SetUpDownPosition(ctx, account, pos); err != nil {
			return err
		}

		switch side {
		case domain.SideUp:
			round.PoolUp, err = domain.CheckedAdd(round.PoolUp, amount)
		case domain.SideDown:
			round.PoolDown, err = domain.CheckedAdd(round.PoolDown, amount)
		}
		if err != nil {
			return err
		}
		if err := s.SetActiveRound(ctx, round); err != nil {
			return err
		}

		// Espejo legacy: los lectores antiguos siguen mirando la clave
		// Positions, así que cada alta se duplica ahí.
		return s.SetLegacyPosition(ctx, account, pos)
	})
	if err != nil {
		return fmt.Errorf("market.PlaceBet: %w", err)
	}

	slog.Debug("bet placed", "account", account, "side", side.String(), "amount", amount)
	return nil
}

// PlacePrecisionPrediction registra una predicción de precio exacto
// (escala de 4 decimales). Una por cuenta y ronda, verificado por barrido
// lineal de la lista.
func (e *Engine) PlacePrecisionPrediction(ctx context.Context, account string, amount int64, predictedPrice uint64) error {
	if err := e.auth.Verify(ctx, account); err != nil {
		return err
	}
	if amount <= 0 {
		return fmt.Errorf("market.PlacePrecisionPrediction: %w", domain.ErrInvalidBetAmount)
	}
	if predictedPrice > domain.MaxPredictedPrice {
		return fmt.Errorf("market.PlacePrecisionPrediction: %w", domain.ErrInvalidPriceScale)
	}

	var startLedger uint32
	err := e.store.Atomic(ctx, func(s ports.Store) error {
		round, ok, err := s.ActiveRound(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNoActiveRound
		}
		if round.Mode != domain.ModePrecision {
			return domain.ErrWrongMode
		}
		if !round.BettingOpen(e.clock.Sequence()) {
			return domain.ErrRoundEnded
		}

		balance, _, err := s.Balance(ctx, account)
		if err != nil {
			return err
		}
		if balance < amount {
			return domain.ErrInsufficientBalance
		}

		preds, err := s.PrecisionPredictions(ctx)
		if err != nil {
			return err
		}
		for _, p := range preds {
			if p.Account == account {
				return domain.ErrAlreadyBet
			}
		}

		newBalance, err := domain.CheckedSub(balance, amount)
		if err != nil {
			return err
		}
		if err := s.SetBalance(ctx, account, newBalance); err != nil {
			return err
		}

		startLedger = round.StartLedger
		return s.AppendPrecisionPrediction(ctx, domain.PrecisionPrediction{
			Account:        account,
			PredictedPrice: predictedPrice,
			Amount:         amount,
		})
	})
	if err != nil {
		return fmt.Errorf("market.PlacePrecisionPrediction: %w", err)
	}

	if err := e.notifier.PredictionSubmitted(ctx, account, predictedPrice, startLedger); err != nil {
		slog.Warn("prediction-submitted notification failed", "err", err)
	}
	return nil
}

// PredictPrice es el alias de PlacePrecisionPrediction con el orden de
// argumentos invertido, mantenido por compatibilidad de interfaz.
func (e *Engine) PredictPrice(ctx context.Context, account string, guessedPrice uint64, amount int64) error {
	return e.PlacePrecisionPrediction(ctx, account, amount, guessedPrice)
}

// UserPosition devuelve la posición Up/Down de la cuenta en la ronda
// activa, si la tiene.
func (e *Engine) UserPosition(ctx context.Context, account string) (domain.UserPosition, bool, error) {
	positions, err := e.store.UpDownPositions(ctx)
	if err != nil {
		return domain.UserPosition{}, false, fmt.Errorf("market.UserPosition: %w", err)
	}
	pos, ok := positions[account]
	return pos, ok, nil
}

// UserPrecisionPrediction devuelve la predicción de la cuenta, si existe.
func (e *Engine) UserPrecisionPrediction(ctx context.Context, account string) (domain.PrecisionPrediction, bool, error) {
	preds, err := e.store.PrecisionPredictions(ctx)
	if err != nil {
		return domain.PrecisionPrediction{}, false, fmt.Errorf("market.UserPrecisionPrediction: %w", err)
	}
	for _, p := range preds {
		if p.Account == account {
			return p, true, nil
		}
	}
	return domain.PrecisionPrediction{}, false, nil
}

// PrecisionPredictions devuelve todas las predicciones de la ronda activa
// en orden de llegada.
func (e *Engine) PrecisionPredictions(ctx context.Context) ([]domain.PrecisionPrediction, error) {
	preds, err := e.store.PrecisionPredictions(ctx)
	if err != nil {
		return nil, fmt.Errorf("market.PrecisionPredictions: %w", err)
	}
	return preds, nil
}

// UpDownPositions devuelve el mapa completo de posiciones Up/Down.
func (e *Engine) UpDownPositions(ctx context.Context) (map[string]domain.UserPosition, error) {
	positions, err := e.store.UpDownPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("market.UpDownPositions: %w", err)
	}
	return positions, nil
}
