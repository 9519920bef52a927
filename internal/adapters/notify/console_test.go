package notify_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/alejandrodnm/vmarket/internal/adapters/notify"
	"github.com/alejandrodnm/vmarket/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsole_RoundCreated(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf)

	err := c.RoundCreated(context.Background(), domain.RoundCreated{
		PriceStart:   1_5000000,
		BetEndLedger: 106,
		EndLedger:    112,
		Mode:         domain.ModeUpDown,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "round created")
	assert.Contains(t, out, "mode:updown")
	assert.Contains(t, out, "bet_end:106")
	assert.Contains(t, out, "end:112")
}

func TestConsole_WindowsUpdated(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf)

	require.NoError(t, c.WindowsUpdated(context.Background(), domain.Windows{Bet: 10, Run: 20}))
	assert.Contains(t, buf.String(), "bet:10 run:20")
}

func TestConsole_PredictionSubmitted(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf)

	require.NoError(t, c.PredictionSubmitted(context.Background(), "alice", 2297, 100))
	assert.Contains(t, buf.String(), "alice")
	assert.Contains(t, buf.String(), "2297")
}

func TestConsole_PrintRound_UpDown(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf)

	round := domain.Round{PriceStart: 1_0000000, PoolUp: 100_0000000, PoolDown: 50_0000000, Mode: domain.ModeUpDown}
	positions := map[string]domain.UserPosition{
		"alice": {Amount: 100_0000000, Side: domain.SideUp},
		"bob":   {Amount: 50_0000000, Side: domain.SideDown},
	}

	c.PrintRound(round, positions, nil)

	out := buf.String()
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "UP")
	assert.Contains(t, out, "bob")
	assert.Contains(t, out, "DOWN")
	assert.Contains(t, out, "100.0000000")
}

func TestConsole_PrintRound_Empty(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf)

	c.PrintRound(domain.Round{Mode: domain.ModePrecision}, nil, nil)
	assert.Contains(t, buf.String(), "no predictions yet")
}

func TestConsole_PrintStats_SortedByBalance(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf)

	c.PrintStats([]notify.StatsRow{
		{Account: "poor", Balance: 10_0000000},
		{Account: "rich", Balance: 900_0000000, Stats: domain.UserStats{TotalWins: 3, BestStreak: 2}},
	})

	out := buf.String()
	assert.Contains(t, out, "rich")
	assert.Contains(t, out, "poor")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("rich")), bytes.Index(buf.Bytes(), []byte("poor")))
}
