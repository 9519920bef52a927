package domain

// RoundMode distingue los dos tipos de predicción que soporta una ronda.
type RoundMode uint32

const (
	// ModeUpDown: apuesta binaria — ¿sube o baja el precio?
	ModeUpDown RoundMode = 0
	// ModePrecision: adivinar el precio exacto (escala de 4 decimales).
	ModePrecision RoundMode = 1
)

// ModeFromSelector convierte el selector numérico externo en RoundMode.
// Cualquier valor fuera de {0, 1} es ErrInvalidMode.
func ModeFromSelector(sel uint32) (RoundMode, error) {
	switch sel {
	case 0:
		return ModeUpDown, nil
	case 1:
		return ModePrecision, nil
	default:
		return 0, ErrInvalidMode
	}
}

func (m RoundMode) String() string {
	if m == ModePrecision {
		return "precision"
	}
	return "updown"
}

// BetSide es el lado de una apuesta Up/Down.
type BetSide uint8

const (
	SideUp BetSide = iota
	SideDown
)

// Valid rechaza cualquier valor fuera de {SideUp, SideDown}: una posición
// con lado desconocido no sumaría a ningún pool y su apuesta quedaría
// irrecuperable.
func (s BetSide) Valid() error {
	if s != SideUp && s != SideDown {
		return ErrInvalidBetSide
	}
	return nil
}

func (s BetSide) String() string {
	if s == SideDown {
		return "DOWN"
	}
	return "UP"
}

const (
	// InitialMint es el saldo que recibe una cuenta nueva: 1000 unidades
	// con 7 decimales.
	InitialMint int64 = 1000_0000000

	// MaxPredictedPrice acota las predicciones de precisión a 4 decimales
	// razonables (9999.9999).
	MaxPredictedPrice uint64 = 99_999_999

	// Ventanas por defecto, en ledgers, sembradas en initialize.
	DefaultBetWindow uint32 = 6
	DefaultRunWindow uint32 = 12
)

// Windows son las duraciones configurables de una ronda, en ledgers.
type Windows struct {
	Bet uint32
	Run uint32
}

// Validate comprueba que ambas ventanas sean positivas y que la de apuestas
// cierre antes de que la ronda pueda resolverse.
func (w Windows) Validate() error {
	if w.Bet == 0 || w.Run == 0 {
		return ErrInvalidDuration
	}
	if w.Bet >= w.Run {
		return ErrInvalidDuration
	}
	return nil
}

// DefaultWindows devuelve las ventanas por defecto (6, 12).
func DefaultWindows() Windows {
	return Windows{Bet: DefaultBetWindow, Run: DefaultRunWindow}
}

// Round es la única ronda activa del mercado. El modo queda fijado al
// crearla y decide qué vía de apuesta es legal.
type Round struct {
	PriceStart   uint64
	StartLedger  uint32
	BetEndLedger uint32
	EndLedger    uint32
	PoolUp       int64
	PoolDown     int64
	Mode         RoundMode
}

// NewRound construye la ronda a partir del ledger actual y las ventanas
// configuradas. Falla con ErrOverflow si la secuencia desborda.
func NewRound(startPrice uint64, startLedger uint32, w Windows, mode RoundMode) (Round, error) {
	betEnd, err := CheckedAddU32(startLedger, w.Bet)
	if err != nil {
		return Round{}, err
	}
	end, err := CheckedAddU32(startLedger, w.Run)
	if err != nil {
		return Round{}, err
	}
	return Round{
		PriceStart:   startPrice,
		StartLedger:  startLedger,
		BetEndLedger: betEnd,
		EndLedger:    end,
		Mode:         mode,
	}, nil
}

// BettingOpen indica si la ronda acepta apuestas en el ledger dado.
// El límite es estricto: en bet_end_ledger ya no se acepta nada.
func (r Round) BettingOpen(ledger uint32) bool {
	return ledger < r.BetEndLedger
}

// Resolvable indica si la ronda puede resolverse en el ledger dado.
func (r Round) Resolvable(ledger uint32) bool {
	return ledger >= r.EndLedger
}

// UserPosition es la apuesta Up/Down de una cuenta en la ronda activa.
// Como máximo una por cuenta y ronda.
type UserPosition struct {
	Amount int64
	Side   BetSide
}

// PrecisionPrediction es una entrada de la lista ordenada de predicciones
// de precio exacto. PredictedPrice va escalado a 4 decimales.
type PrecisionPrediction struct {
	Account        string
	PredictedPrice uint64
	Amount         int64
}

// RoundCreated es el payload de la notificación de ronda creada.
type RoundCreated struct {
	PriceStart   uint64
	BetEndLedger uint32
	EndLedger    uint32
	Mode         RoundMode
}
