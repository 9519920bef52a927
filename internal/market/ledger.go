package market

// ledger.go — saldo virtual por cuenta: mint inicial, consulta y reclamo
// de ganancias pendientes. La unidad es interna (7 decimales), creada solo
// por MintInitial — nunca entra ni sale moneda externa.

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/vmarket/internal/domain"
	"github.com/alejandrodnm/vmarket/internal/ports"
)

// MintInitial acuña el saldo inicial para una cuenta nueva y lo devuelve.
// Idempotente: si la cuenta ya tiene registro devuelve el saldo existente
// sin volver a acuñar.
func (e *Engine) MintInitial(ctx context.Context, account string) (int64, error) {
	if err := e.auth.Verify(ctx, account); err != nil {
		return 0, err
	}

	var minted int64
	err := e.store.Atomic(ctx, func(s ports.Store) error {
		existing, ok, err := s.Balance(ctx, account)
		if err != nil {
			return err
		}
		if ok {
			minted = existing
			return nil
		}
		minted = domain.InitialMint
		return s.SetBalance(ctx, account, minted)
	})
	if err != nil {
		return 0, fmt.Errorf("market.MintInitial: %w", err)
	}
	return minted, nil
}

// Balance devuelve el saldo de la cuenta, 0 si no existe registro.
// Lectura pura, sin autorización.
func (e *Engine) Balance(ctx context.Context, account string) (int64, error) {
	b, _, err := e.store.Balance(ctx, account)
	if err != nil {
		return 0, fmt.Errorf("market.Balance: %w", err)
	}
	return b, nil
}

// PendingWinnings devuelve las ganancias pendientes de reclamo.
func (e *Engine) PendingWinnings(ctx context.Context, account string) (int64, error) {
	p, err := e.store.PendingWinnings(ctx, account)
	if err != nil {
		return 0, fmt.Errorf("market.PendingWinnings: %w", err)
	}
	return p, nil
}

// UserStats devuelve las estadísticas de la cuenta (ceros si nunca vista).
func (e *Engine) UserStats(ctx context.Context, account string) (domain.UserStats, error) {
	st, err := e.store.UserStats(ctx, account)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("market.UserStats: %w", err)
	}
	return st, nil
}

// ClaimWinnings mueve las ganancias pendientes al saldo y devuelve lo
// reclamado. Con pendiente 0 es un no-op sin error: los callers dependen
// de poder reclamar en vacío.
func (e *Engine) ClaimWinnings(ctx context.Context, account string) (int64, error) {
	if err := e.auth.Verify(ctx, account); err != nil {
		return 0, err
	}

	var claimed int64
	err := e.store.Atomic(ctx, func(s ports.Store) error {
		pending, err := s.PendingWinnings(ctx, account)
		if err != nil {
			return err
		}
		if pending == 0 {
			return nil
		}

		balance, _, err := s.Balance(ctx, account)
		if err != nil {
			return err
		}
		newBalance, err := domain.CheckedAdd(balance, pending)
		if err != nil {
			return err
		}
		if err := s.SetBalance(ctx, account, newBalance); err != nil {
			return err
		}
		if err := s.RemovePendingWinnings(ctx, account); err != nil {
			return err
		}
		claimed = pending
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("market.ClaimWinnings: %w", err)
	}

	if claimed > 0 {
		slog.Debug("winnings claimed", "account", account, "amount", claimed)
	}
	return claimed, nil
}
