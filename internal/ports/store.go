package ports

import (
	"context"

	"github.com/alejandrodnm/vmarket/internal/domain"
)

// Store es el almacén persistente del mercado: el esquema de claves del
// contrato (Admin, Oracle, ActiveRound, posiciones, saldos...) expresado
// como métodos tipados en vez de un mapa genérico.
//
// Contrato de atomicidad: cada operación pública del motor se ejecuta
// dentro de Atomic; si la función devuelve error, NINGUNA mutación hecha
// a través del Store interior queda visible. El host serializa las
// invocaciones concurrentes — el Store no necesita ser un lock manager.
type Store interface {
	// identidades y ventanas (config)
	Admin(ctx context.Context) (string, bool, error)
	SetAdmin(ctx context.Context, account string) error
	Oracle(ctx context.Context) (string, bool, error)
	SetOracle(ctx context.Context, account string) error
	Windows(ctx context.Context) (domain.Windows, bool, error)
	SetWindows(ctx context.Context, w domain.Windows) error

	// saldos y ganancias pendientes; Accounts lista (ordenadas) las
	// cuentas con saldo registrado
	Accounts(ctx context.Context) ([]string, error)
	Balance(ctx context.Context, account string) (int64, bool, error)
	SetBalance(ctx context.Context, account string, amount int64) error
	PendingWinnings(ctx context.Context, account string) (int64, error)
	SetPendingWinnings(ctx context.Context, account string, amount int64) error
	RemovePendingWinnings(ctx context.Context, account string) error

	// estadísticas por cuenta (registro en ceros si nunca vista)
	UserStats(ctx context.Context, account string) (domain.UserStats, error)
	SetUserStats(ctx context.Context, account string, stats domain.UserStats) error

	// ronda activa (slot singleton)
	ActiveRound(ctx context.Context) (domain.Round, bool, error)
	SetActiveRound(ctx context.Context, round domain.Round) error
	RemoveActiveRound(ctx context.Context) error

	// posiciones Up/Down de la ronda activa, más el espejo legacy que
	// mantienen algunos lectores antiguos
	UpDownPositions(ctx context.Context) (map[string]domain.UserPosition, error)
	SetUpDownPosition(ctx context.Context, account string, pos domain.UserPosition) error
	SetLegacyPosition(ctx context.Context, account string, pos domain.UserPosition) error

	// predicciones Precision de la ronda activa, en orden de llegada
	PrecisionPredictions(ctx context.Context) ([]domain.PrecisionPrediction, error)
	AppendPrecisionPrediction(ctx context.Context, pred domain.PrecisionPrediction) error

	// ClearRoundPositions borra posiciones Up/Down, espejo legacy y
	// predicciones Precision de una sola vez (al crear o retirar ronda).
	ClearRoundPositions(ctx context.Context) error

	// Atomic ejecuta fn contra una vista transaccional del Store: o se
	// aplica todo, o nada.
	Atomic(ctx context.Context, fn func(Store) error) error

	// Close cierra la conexión limpiamente.
	Close() error
}
