// Package clock implementa ports.LedgerClock: la secuencia monótona que
// el mercado usa como reloj.
package clock

import (
	"sync"
	"time"
)

// Manual es un reloj controlado a mano, para tests y simulación.
type Manual struct {
	mu  sync.Mutex
	seq uint32
}

// NewManual crea un reloj en la secuencia dada.
func NewManual(seq uint32) *Manual {
	return &Manual{seq: seq}
}

func (m *Manual) Sequence() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seq
}

// Advance avanza la secuencia n ledgers.
func (m *Manual) Advance(n uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq += n
}

// Set fija la secuencia. No retrocede: el ledger es monótono.
func (m *Manual) Set(seq uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seq > m.seq {
		m.seq = seq
	}
}

// Wall deriva la secuencia del reloj de pared: un ledger cada interval
// desde génesis. Imita el ritmo de cierre del host (~5s por ledger).
type Wall struct {
	genesis  time.Time
	interval time.Duration
}

// NewWall crea un reloj de pared con el génesis y el intervalo dados.
func NewWall(genesis time.Time, interval time.Duration) Wall {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return Wall{genesis: genesis, interval: interval}
}

func (w Wall) Sequence() uint32 {
	elapsed := time.Since(w.genesis)
	if elapsed < 0 {
		return 0
	}
	return uint32(elapsed / w.interval)
}
