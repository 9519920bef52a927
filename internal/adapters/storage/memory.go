package storage

// memory.go — implementación en memoria de ports.Store, para tests y para
// el modo demo. La atomicidad se consigue por snapshot: Atomic clona el
// estado antes de ejecutar fn y lo restaura entero si fn falla.

import (
	"context"
	"sort"
	"sync"

	"github.com/alejandrodnm/vmarket/internal/domain"
	"github.com/alejandrodnm/vmarket/internal/ports"
)

type memState struct {
	admin      string
	adminSet   bool
	oracle     string
	oracleSet  bool
	windows    domain.Windows
	windowsSet bool

	balances map[string]int64
	pending  map[string]int64
	stats    map[string]domain.UserStats

	round    domain.Round
	roundSet bool
	updown   map[string]domain.UserPosition
	legacy   map[string]domain.UserPosition
	preds    []domain.PrecisionPrediction
}

func newMemState() memState {
	return memState{
		balances: make(map[string]int64),
		pending:  make(map[string]int64),
		stats:    make(map[string]domain.UserStats),
		updown:   make(map[string]domain.UserPosition),
		legacy:   make(map[string]domain.UserPosition),
	}
}

func (s memState) clone() memState {
	c := s
	c.balances = copyMap(s.balances)
	c.pending = copyMap(s.pending)
	c.stats = copyMap(s.stats)
	c.updown = copyMap(s.updown)
	c.legacy = copyMap(s.legacy)
	c.preds = append([]domain.PrecisionPrediction(nil), s.preds...)
	return c
}

func copyMap[V any](m map[string]V) map[string]V {
	c := make(map[string]V, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// MemoryStore implementa ports.Store sobre mapas en memoria.
type MemoryStore struct {
	mu sync.Mutex
	st memState
}

// NewMemoryStore crea un store vacío.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{st: newMemState()}
}

func (m *MemoryStore) Admin(context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.admin, m.st.adminSet, nil
}

func (m *MemoryStore) SetAdmin(_ context.Context, account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.admin, m.st.adminSet = account, true
	return nil
}

func (m *MemoryStore) Oracle(context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.oracle, m.st.oracleSet, nil
}

func (m *MemoryStore) SetOracle(_ context.Context, account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.oracle, m.st.oracleSet = account, true
	return nil
}

func (m *MemoryStore) Windows(context.Context) (domain.Windows, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.windows, m.st.windowsSet, nil
}

func (m *MemoryStore) SetWindows(_ context.Context, w domain.Windows) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.windows, m.st.windowsSet = w, true
	return nil
}

func (m *MemoryStore) Accounts(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	accounts := make([]string, 0, len(m.st.balances))
	for a := range m.st.balances {
		accounts = append(accounts, a)
	}
	sort.Strings(accounts)
	return accounts, nil
}

func (m *MemoryStore) Balance(_ context.Context, account string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.st.balances[account]
	return b, ok, nil
}

func (m *MemoryStore) SetBalance(_ context.Context, account string, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.balances[account] = amount
	return nil
}

func (m *MemoryStore) PendingWinnings(_ context.Context, account string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.pending[account], nil
}

func (m *MemoryStore) SetPendingWinnings(_ context.Context, account string, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.pending[account] = amount
	return nil
}

func (m *MemoryStore) RemovePendingWinnings(_ context.Context, account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.st.pending, account)
	return nil
}

func (m *MemoryStore) UserStats(_ context.Context, account string) (domain.UserStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.stats[account], nil
}

func (m *MemoryStore) SetUserStats(_ context.Context, account string, stats domain.UserStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.stats[account] = stats
	return nil
}

func (m *MemoryStore) ActiveRound(context.Context) (domain.Round, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.round, m.st.roundSet, nil
}

func (m *MemoryStore) SetActiveRound(_ context.Context, round domain.Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.round, m.st.roundSet = round, true
	return nil
}

func (m *MemoryStore) RemoveActiveRound(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.round, m.st.roundSet = domain.Round{}, false
	return nil
}

func (m *MemoryStore) UpDownPositions(context.Context) (map[string]domain.UserPosition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyMap(m.st.updown), nil
}

func (m *MemoryStore) SetUpDownPosition(_ context.Context, account string, pos domain.UserPosition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.updown[account] = pos
	return nil
}

func (m *MemoryStore) SetLegacyPosition(_ context.Context, account string, pos domain.UserPosition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.legacy[account] = pos
	return nil
}

func (m *MemoryStore) PrecisionPredictions(context.Context) ([]domain.PrecisionPrediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.PrecisionPrediction(nil), m.st.preds...), nil
}

func (m *MemoryStore) AppendPrecisionPrediction(_ context.Context, pred domain.PrecisionPrediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.preds = append(m.st.preds, pred)
	return nil
}

func (m *MemoryStore) ClearRoundPositions(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.updown = make(map[string]domain.UserPosition)
	m.st.legacy = make(map[string]domain.UserPosition)
	m.st.preds = nil
	return nil
}

// Atomic ejecuta fn y, si devuelve error, restaura el snapshot previo.
// No se anida: el motor envuelve cada operación exactamente una vez.
func (m *MemoryStore) Atomic(_ context.Context, fn func(ports.Store) error) error {
	m.mu.Lock()
	snapshot := m.st.clone()
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.st = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }
