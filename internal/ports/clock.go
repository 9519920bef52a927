package ports

// LedgerClock expone el número de secuencia del ledger del host: un
// contador monótono creciente que hace de reloj del sistema. Nunca se usa
// un timer — el tiempo se lee en el momento de la llamada.
type LedgerClock interface {
	Sequence() uint32
}
