package ports

import "context"

// Verifier comprueba que el caller controla la cuenta antes de cualquier
// acción privilegiada. Es un colaborador externo: el motor solo afirma el
// resultado y nunca muta estado si la verificación falla.
type Verifier interface {
	// Verify devuelve nil si el caller está autorizado como account,
	// domain.ErrUnauthorized en caso contrario.
	Verify(ctx context.Context, account string) error
}
