package domain

// UserStats acumula el historial de una cuenta. Solo lo muta el motor de
// resolución; una cuenta nunca vista equivale al registro en ceros.
type UserStats struct {
	TotalWins     uint32
	TotalLosses   uint32
	CurrentStreak uint32
	BestStreak    uint32
}

// RecordWin suma una victoria y alarga la racha.
func (s *UserStats) RecordWin() {
	s.TotalWins++
	s.CurrentStreak++
	if s.CurrentStreak > s.BestStreak {
		s.BestStreak = s.CurrentStreak
	}
}

// RecordLoss suma una derrota y corta la racha. BestStreak no se toca.
func (s *UserStats) RecordLoss() {
	s.TotalLosses++
	s.CurrentStreak = 0
}
