package storage

// sqlite.go — ports.Store sobre SQLite (pure Go, sin CGo).
//
// Esquema: una tabla por familia de claves del contrato. La fila única de
// active_round fuerza el slot singleton; market_config guarda admin,
// oracle y ventanas como pares clave-valor. legacy_positions es el espejo
// de compatibilidad de updown_positions: solo se escribe, nunca se lee
// para resolver.
//
// Atomicidad: Atomic abre una transacción y pasa al callback una vista del
// store ligada a la tx. Commit solo si fn devuelve nil.

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alejandrodnm/vmarket/internal/domain"
	"github.com/alejandrodnm/vmarket/internal/ports"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS market_config (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS balances (
    account TEXT PRIMARY KEY,
    amount  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS pending_winnings (
    account TEXT PRIMARY KEY,
    amount  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS user_stats (
    account        TEXT PRIMARY KEY,
    total_wins     INTEGER NOT NULL DEFAULT 0,
    total_losses   INTEGER NOT NULL DEFAULT 0,
    current_streak INTEGER NOT NULL DEFAULT 0,
    best_streak    INTEGER NOT NULL DEFAULT 0
);

-- Slot singleton: id fijado a 1
CREATE TABLE IF NOT EXISTS active_round (
    id             INTEGER PRIMARY KEY CHECK (id = 1),
    price_start    INTEGER NOT NULL,
    start_ledger   INTEGER NOT NULL,
    bet_end_ledger INTEGER NOT NULL,
    end_ledger     INTEGER NOT NULL,
    pool_up        INTEGER NOT NULL DEFAULT 0,
    pool_down      INTEGER NOT NULL DEFAULT 0,
    mode           INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS updown_positions (
    account TEXT PRIMARY KEY,
    amount  INTEGER NOT NULL,
    side    INTEGER NOT NULL
);

-- Espejo legacy de updown_positions (compat con lectores antiguos)
CREATE TABLE IF NOT EXISTS legacy_positions (
    account TEXT PRIMARY KEY,
    amount  INTEGER NOT NULL,
    side    INTEGER NOT NULL
);

-- Lista ordenada: seq preserva el orden de llegada
CREATE TABLE IF NOT EXISTS precision_predictions (
    seq             INTEGER PRIMARY KEY AUTOINCREMENT,
    account         TEXT    NOT NULL,
    predicted_price INTEGER NOT NULL,
    amount          INTEGER NOT NULL
);
`

const (
	cfgAdmin     = "admin"
	cfgOracle    = "oracle"
	cfgBetWindow = "bet_window"
	cfgRunWindow = "run_window"
)

// querier abstrae *sql.DB y *sql.Tx para que los métodos funcionen igual
// dentro y fuera de una transacción.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore implementa ports.Store usando SQLite.
type SQLiteStore struct {
	db *sql.DB
	q  querier // db, o la tx activa dentro de Atomic
}

// NewSQLiteStore abre (o crea) la base de datos en la ruta dada y aplica
// el esquema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}

	return &SQLiteStore{db: db, q: db}, nil
}

// --- config ---

func (s *SQLiteStore) getConfig(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.q.QueryRowContext(ctx, `SELECT value FROM market_config WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: get config %q: %w", key, err)
	}
	return v, true, nil
}

func (s *SQLiteStore) setConfig(ctx context.Context, key, value string) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO market_config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storage: set config %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Admin(ctx context.Context) (string, bool, error) {
	return s.getConfig(ctx, cfgAdmin)
}

func (s *SQLiteStore) SetAdmin(ctx context.Context, account string) error {
	return s.setConfig(ctx, cfgAdmin, account)
}

func (s *SQLiteStore) Oracle(ctx context.Context) (string, bool, error) {
	return s.getConfig(ctx, cfgOracle)
}

func (s *SQLiteStore) SetOracle(ctx context.Context, account string) error {
	return s.setConfig(ctx, cfgOracle, account)
}

func (s *SQLiteStore) Windows(ctx context.Context) (domain.Windows, bool, error) {
	var w domain.Windows
	bet, okBet, err := s.getConfig(ctx, cfgBetWindow)
	if err != nil {
		return w, false, err
	}
	run, okRun, err := s.getConfig(ctx, cfgRunWindow)
	if err != nil {
		return w, false, err
	}
	if !okBet || !okRun {
		return w, false, nil
	}
	if _, err := fmt.Sscanf(bet, "%d", &w.Bet); err != nil {
		return w, false, fmt.Errorf("storage: parse bet_window %q: %w", bet, err)
	}
	if _, err := fmt.Sscanf(run, "%d", &w.Run); err != nil {
		return w, false, fmt.Errorf("storage: parse run_window %q: %w", run, err)
	}
	return w, true, nil
}

func (s *SQLiteStore) SetWindows(ctx context.Context, w domain.Windows) error {
	if err := s.setConfig(ctx, cfgBetWindow, fmt.Sprintf("%d", w.Bet)); err != nil {
		return err
	}
	return s.setConfig(ctx, cfgRunWindow, fmt.Sprintf("%d", w.Run))
}

// --- saldos y pendientes ---

func (s *SQLiteStore) Accounts(ctx context.Context) ([]string, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT account FROM balances ORDER BY account`)
	if err != nil {
		return nil, fmt.Errorf("storage.Accounts: %w", err)
	}
	defer rows.Close()

	var accounts []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("storage.Accounts: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.Accounts: %w", err)
	}
	return accounts, nil
}

func (s *SQLiteStore) Balance(ctx context.Context, account string) (int64, bool, error) {
	var amount int64
	err := s.q.QueryRowContext(ctx, `SELECT amount FROM balances WHERE account = ?`, account).Scan(&amount)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("storage.Balance: %w", err)
	}
	return amount, true, nil
}

func (s *SQLiteStore) SetBalance(ctx context.Context, account string, amount int64) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO balances (account, amount) VALUES (?, ?)
		ON CONFLICT(account) DO UPDATE SET amount = excluded.amount`,
		account, amount,
	)
	if err != nil {
		return fmt.Errorf("storage.SetBalance: %w", err)
	}
	return nil
}

func (s *SQLiteStore) PendingWinnings(ctx context.Context, account string) (int64, error) {
	var amount int64
	err := s.q.QueryRowContext(ctx, `SELECT amount FROM pending_winnings WHERE account = ?`, account).Scan(&amount)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("storage.PendingWinnings: %w", err)
	}
	return amount, nil
}

func (s *SQLiteStore) SetPendingWinnings(ctx context.Context, account string, amount int64) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO pending_winnings (account, amount) VALUES (?, ?)
		ON CONFLICT(account) DO UPDATE SET amount = excluded.amount`,
		account, amount,
	)
	if err != nil {
		return fmt.Errorf("storage.SetPendingWinnings: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RemovePendingWinnings(ctx context.Context, account string) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM pending_winnings WHERE account = ?`, account)
	if err != nil {
		return fmt.Errorf("storage.RemovePendingWinnings: %w", err)
	}
	return nil
}

// --- stats ---

func (s *SQLiteStore) UserStats(ctx context.Context, account string) (domain.UserStats, error) {
	var st domain.UserStats
	err := s.q.QueryRowContext(ctx, `
		SELECT total_wins, total_losses, current_streak, best_streak
		FROM user_stats WHERE account = ?`, account,
	).Scan(&st.TotalWins, &st.TotalLosses, &st.CurrentStreak, &st.BestStreak)
	if err == sql.ErrNoRows {
		return domain.UserStats{}, nil // cuenta nunca vista: todo en ceros
	}
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("storage.UserStats: %w", err)
	}
	return st, nil
}

func (s *SQLiteStore) SetUserStats(ctx context.Context, account string, st domain.UserStats) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO user_stats (account, total_wins, total_losses, current_streak, best_streak)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(account) DO UPDATE SET
			total_wins     = excluded.total_wins,
			total_losses   = excluded.total_losses,
			current_streak = excluded.current_streak,
			best_streak    = excluded.best_streak`,
		account, st.TotalWins, st.TotalLosses, st.CurrentStreak, st.BestStreak,
	)
	if err != nil {
		return fmt.Errorf("storage.SetUserStats: %w", err)
	}
	return nil
}

// --- ronda activa ---

func (s *SQLiteStore) ActiveRound(ctx context.Context) (domain.Round, bool, error) {
	var r domain.Round
	var mode uint32
	err := s.q.QueryRowContext(ctx, `
		SELECT price_start, start_ledger, bet_end_ledger, end_ledger, pool_up, pool_down, mode
		FROM active_round WHERE id = 1`,
	).Scan(&r.PriceStart, &r.StartLedger, &r.BetEndLedger, &r.EndLedger, &r.PoolUp, &r.PoolDown, &mode)
	if err == sql.ErrNoRows {
		return domain.Round{}, false, nil
	}
	if err != nil {
		return domain.Round{}, false, fmt.Errorf("storage.ActiveRound: %w", err)
	}
	r.Mode = domain.RoundMode(mode)
	return r, true, nil
}

func (s *SQLiteStore) SetActiveRound(ctx context.Context, r domain.Round) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO active_round (id, price_start, start_ledger, bet_end_ledger, end_ledger, pool_up, pool_down, mode)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			price_start    = excluded.price_start,
			start_ledger   = excluded.start_ledger,
			bet_end_ledger = excluded.bet_end_ledger,
			end_ledger     = excluded.end_ledger,
			pool_up        = excluded.pool_up,
			pool_down      = excluded.pool_down,
			mode           = excluded.mode`,
		r.PriceStart, r.StartLedger, r.BetEndLedger, r.EndLedger, r.PoolUp, r.PoolDown, uint32(r.Mode),
	)
	if err != nil {
		return fmt.Errorf("storage.SetActiveRound: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RemoveActiveRound(ctx context.Context) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM active_round WHERE id = 1`)
	if err != nil {
		return fmt.Errorf("storage.RemoveActiveRound: %w", err)
	}
	return nil
}

// --- posiciones ---

func (s *SQLiteStore) UpDownPositions(ctx context.Context) (map[string]domain.UserPosition, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT account, amount, side FROM updown_positions`)
	if err != nil {
		return nil, fmt.Errorf("storage.UpDownPositions: %w", err)
	}
	defer rows.Close()

	positions := make(map[string]domain.UserPosition)
	for rows.Next() {
		var account string
		var pos domain.UserPosition
		var side uint8
		if err := rows.Scan(&account, &pos.Amount, &side); err != nil {
			return nil, fmt.Errorf("storage.UpDownPositions: scan: %w", err)
		}
		pos.Side = domain.BetSide(side)
		positions[account] = pos
	}
	return positions, rows.Err()
}

func (s *SQLiteStore) SetUpDownPosition(ctx context.Context, account string, pos domain.UserPosition) error {
	return s.upsertPosition(ctx, "updown_positions", account, pos)
}

func (s *SQLiteStore) SetLegacyPosition(ctx context.Context, account string, pos domain.UserPosition) error {
	return s.upsertPosition(ctx, "legacy_positions", account, pos)
}

func (s *SQLiteStore) upsertPosition(ctx context.Context, table, account string, pos domain.UserPosition) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO `+table+` (account, amount, side) VALUES (?, ?, ?)
		ON CONFLICT(account) DO UPDATE SET amount = excluded.amount, side = excluded.side`,
		account, pos.Amount, uint8(pos.Side),
	)
	if err != nil {
		return fmt.Errorf("storage: upsert %s: %w", table, err)
	}
	return nil
}

func (s *SQLiteStore) PrecisionPredictions(ctx context.Context) ([]domain.PrecisionPrediction, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT account, predicted_price, amount FROM precision_predictions ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage.PrecisionPredictions: %w", err)
	}
	defer rows.Close()

	var preds []domain.PrecisionPrediction
	for rows.Next() {
		var p domain.PrecisionPrediction
		if err := rows.Scan(&p.Account, &p.PredictedPrice, &p.Amount); err != nil {
			return nil, fmt.Errorf("storage.PrecisionPredictions: scan: %w", err)
		}
		preds = append(preds, p)
	}
	return preds, rows.Err()
}

func (s *SQLiteStore) AppendPrecisionPrediction(ctx context.Context, p domain.PrecisionPrediction) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO precision_predictions (account, predicted_price, amount) VALUES (?, ?, ?)`,
		p.Account, p.PredictedPrice, p.Amount,
	)
	if err != nil {
		return fmt.Errorf("storage.AppendPrecisionPrediction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ClearRoundPositions(ctx context.Context) error {
	for _, table := range []string{"updown_positions", "legacy_positions", "precision_predictions"} {
		if _, err := s.q.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("storage.ClearRoundPositions: %s: %w", table, err)
		}
	}
	return nil
}

// --- transacciones ---

// Atomic ejecuta fn dentro de una transacción. Si ya estamos dentro de una
// (vista anidada), reutiliza la tx existente.
func (s *SQLiteStore) Atomic(ctx context.Context, fn func(ports.Store) error) error {
	if _, inTx := s.q.(*sql.Tx); inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.Atomic: begin: %w", err)
	}

	view := &SQLiteStore{db: s.db, q: tx}
	if err := fn(view); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.Atomic: commit: %w", err)
	}
	return nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
