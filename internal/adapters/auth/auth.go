// Package auth implementa ports.Verifier: la comprobación "el caller
// controla la cuenta X" que el motor delega antes de mutar nada.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/alejandrodnm/vmarket/internal/domain"
)

// Open aprueba cualquier cuenta. Para la demo y los tests, donde la
// identidad ya viene resuelta por el entorno.
type Open struct{}

func (Open) Verify(context.Context, string) error { return nil }

// Keyring verifica por HMAC-SHA256: cada cuenta registra un secreto y el
// caller adjunta al contexto la firma de su propio identificador. Es la
// forma mínima de capability check — en despliegue real el host firma con
// la clave de la cuenta.
type Keyring struct {
	mu   sync.RWMutex
	keys map[string][]byte
}

// NewKeyring crea un keyring vacío.
func NewKeyring() *Keyring {
	return &Keyring{keys: make(map[string][]byte)}
}

// Register asocia un secreto a la cuenta (lo pisa si ya existía).
func (k *Keyring) Register(account string, secret []byte) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[account] = append([]byte(nil), secret...)
}

// Sign produce la firma que WithSignature debe adjuntar al contexto.
func Sign(secret []byte, account string) string {
	return hex.EncodeToString(sum(secret, account))
}

func sum(secret []byte, account string) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(account))
	return mac.Sum(nil)
}

type ctxKey struct{}

type signature struct {
	account string
	mac     string
}

// WithSignature adjunta al contexto la firma del caller para la cuenta.
func WithSignature(ctx context.Context, account, mac string) context.Context {
	return context.WithValue(ctx, ctxKey{}, signature{account: account, mac: mac})
}

// Verify comprueba que el contexto traiga una firma válida para la cuenta.
func (k *Keyring) Verify(ctx context.Context, account string) error {
	sig, ok := ctx.Value(ctxKey{}).(signature)
	if !ok || sig.account != account {
		return fmt.Errorf("auth.Verify: %q: %w", account, domain.ErrUnauthorized)
	}

	k.mu.RLock()
	secret, ok := k.keys[account]
	k.mu.RUnlock()
	if !ok {
		return fmt.Errorf("auth.Verify: %q: unknown account: %w", account, domain.ErrUnauthorized)
	}

	got, err := hex.DecodeString(sig.mac)
	if err != nil || !hmac.Equal(got, sum(secret, account)) {
		return fmt.Errorf("auth.Verify: %q: bad signature: %w", account, domain.ErrUnauthorized)
	}
	return nil
}
