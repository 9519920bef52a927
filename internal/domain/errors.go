package domain

import "errors"

// Taxonomía de errores del mercado. Cada operación pública devuelve uno de
// estos valores (envuelto con contexto) y el caller decide con errors.Is.
// Ningún error provoca commit parcial: la operación entera se descarta.
var (
	ErrAlreadyInitialized = errors.New("market already initialized")
	ErrAdminNotSet        = errors.New("admin not set")
	ErrOracleNotSet       = errors.New("oracle not set")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrInvalidMode        = errors.New("invalid round mode")
	ErrInvalidDuration    = errors.New("invalid window duration")
	ErrInvalidBetAmount   = errors.New("invalid bet amount")
	ErrInvalidBetSide     = errors.New("invalid bet side")
	ErrInvalidPriceScale  = errors.New("predicted price out of scale")
	ErrNoActiveRound      = errors.New("no active round")
	ErrWrongMode          = errors.New("wrong mode for this prediction")
	ErrRoundEnded         = errors.New("betting window closed")
	ErrRoundNotEnded      = errors.New("round has not ended yet")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAlreadyBet         = errors.New("account already has a position this round")
	ErrOverflow           = errors.New("arithmetic overflow")

	// ErrUnauthorized lo levanta el verificador de identidad externo.
	ErrUnauthorized = errors.New("caller not authorized for account")
)
