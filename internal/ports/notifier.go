package ports

import (
	"context"

	"github.com/alejandrodnm/vmarket/internal/domain"
)

// Notifier publica los eventos del mercado a observadores externos.
// Fire-and-forget: un error del notificador se loguea y no revierte la
// operación que lo emitió.
type Notifier interface {
	RoundCreated(ctx context.Context, ev domain.RoundCreated) error
	WindowsUpdated(ctx context.Context, w domain.Windows) error
	PredictionSubmitted(ctx context.Context, account string, predictedPrice uint64, startLedger uint32) error
}
