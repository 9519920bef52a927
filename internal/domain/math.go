package domain

import "math"

// Aritmética comprobada. Todo cálculo que toca saldos o pools pasa por
// aquí: un desborde devuelve ErrOverflow y aborta la operación entera,
// nunca envuelve en silencio.

// CheckedAdd suma dos int64 detectando desborde en ambos sentidos.
func CheckedAdd(a, b int64) (int64, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, ErrOverflow
	}
	return sum, nil
}

// CheckedSub resta b de a detectando desborde.
func CheckedSub(a, b int64) (int64, error) {
	diff := a - b
	if (b > 0 && diff > a) || (b < 0 && diff < a) {
		return 0, ErrOverflow
	}
	return diff, nil
}

// CheckedMul multiplica dos int64 detectando desborde.
func CheckedMul(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a == -1 && b == math.MinInt64 || b == -1 && a == math.MinInt64 {
		return 0, ErrOverflow
	}
	prod := a * b
	if prod/b != a {
		return 0, ErrOverflow
	}
	return prod, nil
}

// CheckedAddU32 suma secuencias de ledger (uint32) detectando desborde.
func CheckedAddU32(a, b uint32) (uint32, error) {
	sum := a + b
	if sum < a {
		return 0, ErrOverflow
	}
	return sum, nil
}

// AbsDiff devuelve |a - b| para precios sin signo.
func AbsDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}
