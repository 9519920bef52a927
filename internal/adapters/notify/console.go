package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/alejandrodnm/vmarket/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Notifier escribiendo a stdout. Además de los
// eventos del puerto, ofrece tablas de resumen que usa el modo demo.
type Console struct {
	out io.Writer
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

func (c *Console) stamp() string {
	return time.Now().Format("15:04:05")
}

// RoundCreated anuncia la ronda nueva en una línea.
func (c *Console) RoundCreated(_ context.Context, ev domain.RoundCreated) error {
	_, err := fmt.Fprintf(c.out, "[%s] round created — mode:%s start_price:%d bet_end:%d end:%d\n",
		c.stamp(), ev.Mode, ev.PriceStart, ev.BetEndLedger, ev.EndLedger)
	return err
}

// WindowsUpdated anuncia el cambio de ventanas.
func (c *Console) WindowsUpdated(_ context.Context, w domain.Windows) error {
	_, err := fmt.Fprintf(c.out, "[%s] windows updated — bet:%d run:%d\n", c.stamp(), w.Bet, w.Run)
	return err
}

// PredictionSubmitted anuncia una predicción de precisión nueva.
func (c *Console) PredictionSubmitted(_ context.Context, account string, predictedPrice uint64, startLedger uint32) error {
	_, err := fmt.Fprintf(c.out, "[%s] prediction — %s guesses %d (round started at %d)\n",
		c.stamp(), shortAccount(account), predictedPrice, startLedger)
	return err
}

// PrintRound imprime el estado de la ronda activa con sus posiciones.
func (c *Console) PrintRound(round domain.Round, positions map[string]domain.UserPosition, preds []domain.PrecisionPrediction) {
	fmt.Fprintf(c.out, "\n[%s] active round — mode:%s start_price:%d pools U:%d D:%d\n",
		c.stamp(), round.Mode, round.PriceStart, round.PoolUp, round.PoolDown)

	switch round.Mode {
	case domain.ModeUpDown:
		if len(positions) == 0 {
			fmt.Fprintln(c.out, "  no positions yet")
			return
		}
		table := tablewriter.NewWriter(c.out)
		table.Header("Account", "Side", "Amount")

		accounts := make([]string, 0, len(positions))
		for a := range positions {
			accounts = append(accounts, a)
		}
		sort.Strings(accounts)

		for _, a := range accounts {
			pos := positions[a]
			table.Append(shortAccount(a), pos.Side.String(), formatAmount(pos.Amount))
		}
		table.Render()

	case domain.ModePrecision:
		if len(preds) == 0 {
			fmt.Fprintln(c.out, "  no predictions yet")
			return
		}
		table := tablewriter.NewWriter(c.out)
		table.Header("#", "Account", "Guess", "Amount")
		for i, p := range preds {
			table.Append(
				fmt.Sprintf("%d", i+1),
				shortAccount(p.Account),
				fmt.Sprintf("%d", p.PredictedPrice),
				formatAmount(p.Amount),
			)
		}
		table.Render()
	}
}

// StatsRow es una fila de la tabla de estadísticas de la demo.
type StatsRow struct {
	Account string
	Balance int64
	Pending int64
	Stats   domain.UserStats
}

// PrintStats imprime la tabla de cuentas: saldo, pendiente y rachas.
func (c *Console) PrintStats(rows []StatsRow) {
	if len(rows) == 0 {
		fmt.Fprintln(c.out, "  no accounts")
		return
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Balance > rows[j].Balance })

	table := tablewriter.NewWriter(c.out)
	table.Header("Account", "Balance", "Pending", "W", "L", "Streak", "Best")
	for _, r := range rows {
		table.Append(
			shortAccount(r.Account),
			formatAmount(r.Balance),
			formatAmount(r.Pending),
			fmt.Sprintf("%d", r.Stats.TotalWins),
			fmt.Sprintf("%d", r.Stats.TotalLosses),
			fmt.Sprintf("%d", r.Stats.CurrentStreak),
			fmt.Sprintf("%d", r.Stats.BestStreak),
		)
	}
	table.Render()
}

// --- helpers ---

// formatAmount muestra unidades enteras con 7 decimales de precisión.
func formatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%07d", sign, minor/1_0000000, minor%1_0000000)
}

func shortAccount(a string) string {
	if len(a) <= 16 {
		return a
	}
	return a[:13] + "..."
}

// Discard es un Notifier que no hace nada, para tests del motor.
type Discard struct{}

func (Discard) RoundCreated(context.Context, domain.RoundCreated) error  { return nil }
func (Discard) WindowsUpdated(context.Context, domain.Windows) error     { return nil }
func (Discard) PredictionSubmitted(context.Context, string, uint64, uint32) error {
	return nil
}
