package domain

// payout.go — la aritmética pari-mutuel, separada del storage para poder
// testearla en aislamiento.
//
// Up/Down: los ganadores se reparten el pool perdedor a prorrata de su
// propia apuesta. Precision: el bote completo se divide a partes iguales
// entre los empatados a distancia mínima; el resto de la división entera
// no se reparte (política explícita, no un accidente de redondeo).

// UpDownPayout calcula el pago de una posición ganadora:
// amount + floor(amount * losingPool / winningPool).
// winningPool debe ser > 0; el caller trata el pool vacío como no-op.
func UpDownPayout(amount, winningPool, losingPool int64) (int64, error) {
	share, err := CheckedMul(amount, losingPool)
	if err != nil {
		return 0, err
	}
	share /= winningPool
	return CheckedAdd(amount, share)
}

// PrecisionOutcome es el resultado puro de resolver una ronda Precision.
type PrecisionOutcome struct {
	// Winners marca por índice qué predicciones quedaron a distancia mínima.
	Winners []bool
	// Pot es la suma de TODAS las apuestas, ganadoras y perdedoras.
	Pot int64
	// Payout es floor(Pot / nº de ganadores); el resto se pierde.
	Payout int64
}

// ResolvePrecision calcula ganadores y pago para el precio final dado.
// Con cero predicciones devuelve un outcome vacío (no-op para el caller).
// Los empates a distancia mínima ganan todos, sea cual sea su multiplicidad.
func ResolvePrecision(preds []PrecisionPrediction, finalPrice uint64) (PrecisionOutcome, error) {
	out := PrecisionOutcome{Winners: make([]bool, len(preds))}
	if len(preds) == 0 {
		return out, nil
	}

	minDiff := AbsDiff(preds[0].PredictedPrice, finalPrice)
	for _, p := range preds[1:] {
		if d := AbsDiff(p.PredictedPrice, finalPrice); d < minDiff {
			minDiff = d
		}
	}

	winners := int64(0)
	for i, p := range preds {
		var err error
		out.Pot, err = CheckedAdd(out.Pot, p.Amount)
		if err != nil {
			return PrecisionOutcome{}, err
		}
		if AbsDiff(p.PredictedPrice, finalPrice) == minDiff {
			out.Winners[i] = true
			winners++
		}
	}

	// winners >= 1 siempre: la distancia mínima la alcanza alguien.
	out.Payout = out.Pot / winners
	return out, nil
}
