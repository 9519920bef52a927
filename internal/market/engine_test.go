package market

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/vmarket/internal/adapters/auth"
	"github.com/alejandrodnm/vmarket/internal/adapters/clock"
	"github.com/alejandrodnm/vmarket/internal/adapters/notify"
	"github.com/alejandrodnm/vmarket/internal/adapters/storage"
	"github.com/alejandrodnm/vmarket/internal/domain"
)

const (
	testAdmin  = "GADMIN"
	testOracle = "GORACLE"
	testAlice  = "GALICE"
	testBob    = "GBOB"
	testCarol  = "GCAROL"
)

// denyAuth rechaza cualquier verificación. Para probar las vías de
// autorización sin montar un Keyring completo.
type denyAuth struct{}

func (denyAuth) Verify(context.Context, string) error { return domain.ErrUnauthorized }

func newTestEngine(t *testing.T) (*Engine, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(100)
	e := New(storage.NewMemoryStore(), auth.Open{}, clk, notify.Discard{})
	return e, clk
}

// newInitializedEngine deja el mercado inicializado y a alice y bob con
// su mint inicial.
func newInitializedEngine(t *testing.T) (*Engine, *clock.Manual) {
	t.Helper()
	e, clk := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, e.Initialize(ctx, testAdmin, testOracle))
	for _, acc := range []string{testAlice, testBob, testCarol} {
		_, err := e.MintInitial(ctx, acc)
		require.NoError(t, err)
	}
	return e, clk
}

func TestInitialize(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Initialize(ctx, testAdmin, testOracle))

	admin, ok, err := e.Admin(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, testAdmin, admin)

	oracle, ok, err := e.Oracle(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, testOracle, oracle)
}

func TestInitializeTwiceFails(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Initialize(ctx, testAdmin, testOracle))
	err := e.Initialize(ctx, "GOTHER", "GOTHER2")
	assert.ErrorIs(t, err, domain.ErrAlreadyInitialized)

	// El segundo intento no pisa nada.
	admin, _, err := e.Admin(ctx)
	require.NoError(t, err)
	assert.Equal(t, testAdmin, admin)
}

func TestInitializeUnauthorized(t *testing.T) {
	e := New(storage.NewMemoryStore(), denyAuth{}, clock.NewManual(0), notify.Discard{})
	err := e.Initialize(context.Background(), testAdmin, testOracle)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSetWindows(t *testing.T) {
	e, _ := newInitializedEngine(t)
	ctx := context.Background()

	require.NoError(t, e.SetWindows(ctx, 10, 20))

	// Las ventanas nuevas aplican a la siguiente ronda.
	require.NoError(t, e.CreateRound(ctx, 30_0000, 0))
	round, ok, err := e.ActiveRound(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint32(110), round.BetEndLedger)
	assert.Equal(t, uint32(120), round.EndLedger)
}

func TestSetWindowsRequiresInitialize(t *testing.T) {
	e, _ := newTestEngine(t)
	err := e.SetWindows(context.Background(), 10, 20)
	assert.ErrorIs(t, err, domain.ErrAdminNotSet)
}

func TestSetWindowsInvalid(t *testing.T) {
	e, _ := newInitializedEngine(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		bet, run uint32
	}{
		{"zero bet", 0, 12},
		{"zero run", 6, 0},
		{"bet equals run", 12, 12},
		{"bet after run", 20, 12},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := e.SetWindows(ctx, tc.bet, tc.run)
			assert.ErrorIs(t, err, domain.ErrInvalidDuration)
		})
	}
}

func TestCreateRoundDefaults(t *testing.T) {
	e, _ := newInitializedEngine(t)
	ctx := context.Background()

	require.NoError(t, e.CreateRound(ctx, 30_0000, 0))

	round, ok, err := e.ActiveRound(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(30_0000), round.PriceStart)
	assert.Equal(t, uint32(100), round.StartLedger)
	assert.Equal(t, uint32(106), round.BetEndLedger)
	assert.Equal(t, uint32(112), round.EndLedger)
	assert.Equal(t, domain.ModeUpDown, round.Mode)
	assert.Zero(t, round.PoolUp)
	assert.Zero(t, round.PoolDown)
}

func TestCreateRoundValidation(t *testing.T) {
	e, _ := newInitializedEngine(t)
	ctx := context.Background()

	err := e.CreateRound(ctx, 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	err = e.CreateRound(ctx, 30_0000, 2)
	assert.ErrorIs(t, err, domain.ErrInvalidMode)
}

func TestCreateRoundRequiresInitialize(t *testing.T) {
	e, _ := newTestEngine(t)
	err := e.CreateRound(context.Background(), 30_0000, 0)
	assert.ErrorIs(t, err, domain.ErrAdminNotSet)
}

// Crear una ronda nueva con otra sin resolver abandona la anterior: las
// posiciones viejas desaparecen y los saldos apostados no vuelven.
func TestCreateRoundAbandonsUnresolved(t *testing.T) {
	e, _ := newInitializedEngine(t)
	ctx := context.Background()

	require.NoError(t, e.CreateRound(ctx, 30_0000, 0))
	require.NoError(t, e.PlaceBet(ctx, testAlice, 100_0000000, domain.SideUp))

	require.NoError(t, e.CreateRound(ctx, 40_0000, 0))

	_, ok, err := e.UserPosition(ctx, testAlice)
	require.NoError(t, err)
	assert.False(t, ok)

	round, _, err := e.ActiveRound(ctx)
	require.NoError(t, err)
	assert.Zero(t, round.PoolUp)

	balance, err := e.Balance(ctx, testAlice)
	require.NoError(t, err)
	assert.Equal(t, domain.InitialMint-100_0000000, balance)
}
