package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alejandrodnm/vmarket/internal/adapters/storage"
	"github.com/alejandrodnm/vmarket/internal/domain"
	"github.com/alejandrodnm/vmarket/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// forEachStore corre el mismo test contra ambas implementaciones: el
// contrato de ports.Store es uno solo.
func forEachStore(t *testing.T, test func(t *testing.T, s ports.Store)) {
	t.Helper()

	t.Run("sqlite", func(t *testing.T) {
		s, err := storage.NewSQLiteStore(":memory:")
		require.NoError(t, err)
		defer s.Close()
		test(t, s)
	})

	t.Run("memory", func(t *testing.T) {
		s := storage.NewMemoryStore()
		defer s.Close()
		test(t, s)
	})
}

func TestStore_ConfigRoundTrip(t *testing.T) {
	forEachStore(t, func(t *testing.T, s ports.Store) {
		ctx := context.Background()

		_, ok, err := s.Admin(ctx)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, s.SetAdmin(ctx, "GADMIN"))
		require.NoError(t, s.SetOracle(ctx, "GORACLE"))
		require.NoError(t, s.SetWindows(ctx, domain.Windows{Bet: 10, Run: 20}))

		admin, ok, err := s.Admin(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "GADMIN", admin)

		oracle, ok, err := s.Oracle(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "GORACLE", oracle)

		w, ok, err := s.Windows(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, domain.Windows{Bet: 10, Run: 20}, w)
	})
}

func TestStore_Balances(t *testing.T) {
	forEachStore(t, func(t *testing.T, s ports.Store) {
		ctx := context.Background()

		_, ok, err := s.Balance(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, ok, "cuenta nueva: sin registro")

		require.NoError(t, s.SetBalance(ctx, "alice", domain.InitialMint))

		b, ok, err := s.Balance(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, domain.InitialMint, b)

		// sobreescritura
		require.NoError(t, s.SetBalance(ctx, "alice", 42))
		b, _, _ = s.Balance(ctx, "alice")
		assert.Equal(t, int64(42), b)
	})
}

func TestStore_Accounts(t *testing.T) {
	forEachStore(t, func(t *testing.T, s ports.Store) {
		ctx := context.Background()

		accounts, err := s.Accounts(ctx)
		require.NoError(t, err)
		assert.Empty(t, accounts)

		require.NoError(t, s.SetBalance(ctx, "carol", 1))
		require.NoError(t, s.SetBalance(ctx, "alice", 2))
		require.NoError(t, s.SetBalance(ctx, "bob", 3))

		accounts, err = s.Accounts(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "bob", "carol"}, accounts)
	})
}

func TestStore_PendingWinnings(t *testing.T) {
	forEachStore(t, func(t *testing.T, s ports.Store) {
		ctx := context.Background()

		p, err := s.PendingWinnings(ctx, "bob")
		require.NoError(t, err)
		assert.Zero(t, p, "sin registro equivale a 0")

		require.NoError(t, s.SetPendingWinnings(ctx, "bob", 150_0000000))
		p, err = s.PendingWinnings(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, int64(150_0000000), p)

		require.NoError(t, s.RemovePendingWinnings(ctx, "bob"))
		p, err = s.PendingWinnings(ctx, "bob")
		require.NoError(t, err)
		assert.Zero(t, p)
	})
}

func TestStore_UserStats(t *testing.T) {
	forEachStore(t, func(t *testing.T, s ports.Store) {
		ctx := context.Background()

		st, err := s.UserStats(ctx, "carol")
		require.NoError(t, err)
		assert.Equal(t, domain.UserStats{}, st, "cuenta nunca vista: ceros")

		st.RecordWin()
		st.RecordWin()
		st.RecordLoss()
		require.NoError(t, s.SetUserStats(ctx, "carol", st))

		got, err := s.UserStats(ctx, "carol")
		require.NoError(t, err)
		assert.Equal(t, uint32(2), got.TotalWins)
		assert.Equal(t, uint32(1), got.TotalLosses)
		assert.Equal(t, uint32(0), got.CurrentStreak)
		assert.Equal(t, uint32(2), got.BestStreak)
	})
}

func TestStore_ActiveRoundSingleton(t *testing.T) {
	forEachStore(t, func(t *testing.T, s ports.Store) {
		ctx := context.Background()

		_, ok, err := s.ActiveRound(ctx)
		require.NoError(t, err)
		assert.False(t, ok)

		r1 := domain.Round{PriceStart: 1_5000000, StartLedger: 100, BetEndLedger: 106, EndLedger: 112, Mode: domain.ModeUpDown}
		require.NoError(t, s.SetActiveRound(ctx, r1))

		// reescribir el slot reemplaza, no duplica
		r2 := domain.Round{PriceStart: 2000, StartLedger: 200, BetEndLedger: 206, EndLedger: 212, PoolUp: 7, Mode: domain.ModePrecision}
		require.NoError(t, s.SetActiveRound(ctx, r2))

		got, ok, err := s.ActiveRound(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, r2, got)

		require.NoError(t, s.RemoveActiveRound(ctx))
		_, ok, _ = s.ActiveRound(ctx)
		assert.False(t, ok)
	})
}

func TestStore_PositionsAndPredictions(t *testing.T) {
	forEachStore(t, func(t *testing.T, s ports.Store) {
		ctx := context.Background()

		require.NoError(t, s.SetUpDownPosition(ctx, "alice", domain.UserPosition{Amount: 100, Side: domain.SideUp}))
		require.NoError(t, s.SetUpDownPosition(ctx, "bob", domain.UserPosition{Amount: 150, Side: domain.SideDown}))
		require.NoError(t, s.SetLegacyPosition(ctx, "alice", domain.UserPosition{Amount: 100, Side: domain.SideUp}))

		positions, err := s.UpDownPositions(ctx)
		require.NoError(t, err)
		require.Len(t, positions, 2)
		assert.Equal(t, domain.SideUp, positions["alice"].Side)
		assert.Equal(t, int64(150), positions["bob"].Amount)

		require.NoError(t, s.AppendPrecisionPrediction(ctx, domain.PrecisionPrediction{Account: "carol", PredictedPrice: 2297, Amount: 10}))
		require.NoError(t, s.AppendPrecisionPrediction(ctx, domain.PrecisionPrediction{Account: "dave", PredictedPrice: 2500, Amount: 20}))

		preds, err := s.PrecisionPredictions(ctx)
		require.NoError(t, err)
		require.Len(t, preds, 2)
		// orden de llegada preservado
		assert.Equal(t, "carol", preds[0].Account)
		assert.Equal(t, "dave", preds[1].Account)

		require.NoError(t, s.ClearRoundPositions(ctx))

		positions, err = s.UpDownPositions(ctx)
		require.NoError(t, err)
		assert.Empty(t, positions)
		preds, err = s.PrecisionPredictions(ctx)
		require.NoError(t, err)
		assert.Empty(t, preds)
	})
}

func TestStore_AtomicCommit(t *testing.T) {
	forEachStore(t, func(t *testing.T, s ports.Store) {
		ctx := context.Background()

		err := s.Atomic(ctx, func(tx ports.Store) error {
			if err := tx.SetBalance(ctx, "alice", 100); err != nil {
				return err
			}
			return tx.SetPendingWinnings(ctx, "alice", 50)
		})
		require.NoError(t, err)

		b, ok, err := s.Balance(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(100), b)
	})
}

func TestStore_AtomicRollback(t *testing.T) {
	forEachStore(t, func(t *testing.T, s ports.Store) {
		ctx := context.Background()
		require.NoError(t, s.SetBalance(ctx, "alice", 100))

		boom := errors.New("boom")
		err := s.Atomic(ctx, func(tx ports.Store) error {
			if err := tx.SetBalance(ctx, "alice", 0); err != nil {
				return err
			}
			if err := tx.SetUpDownPosition(ctx, "alice", domain.UserPosition{Amount: 100}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		// nada del bloque fallido quedó visible
		b, _, err := s.Balance(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(100), b)

		positions, err := s.UpDownPositions(ctx)
		require.NoError(t, err)
		assert.Empty(t, positions)
	})
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := t.TempDir() + "/market.db"
	ctx := context.Background()

	s, err := storage.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.SetAdmin(ctx, "GADMIN"))
	require.NoError(t, s.SetBalance(ctx, "alice", domain.InitialMint))
	require.NoError(t, s.Close())

	s, err = storage.NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	admin, ok, err := s.Admin(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "GADMIN", admin)

	b, ok, err := s.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.InitialMint, b)
}
