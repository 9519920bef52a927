package auth_test

import (
	"context"
	"testing"

	"github.com/alejandrodnm/vmarket/internal/adapters/auth"
	"github.com/alejandrodnm/vmarket/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestOpen_AllowsAnyone(t *testing.T) {
	assert.NoError(t, auth.Open{}.Verify(context.Background(), "whoever"))
}

func TestKeyring_ValidSignature(t *testing.T) {
	k := auth.NewKeyring()
	k.Register("alice", []byte("secret-a"))

	ctx := auth.WithSignature(context.Background(), "alice", auth.Sign([]byte("secret-a"), "alice"))
	assert.NoError(t, k.Verify(ctx, "alice"))
}

func TestKeyring_WrongSecret(t *testing.T) {
	k := auth.NewKeyring()
	k.Register("alice", []byte("secret-a"))

	ctx := auth.WithSignature(context.Background(), "alice", auth.Sign([]byte("wrong"), "alice"))
	assert.ErrorIs(t, k.Verify(ctx, "alice"), domain.ErrUnauthorized)
}

func TestKeyring_SignatureForOtherAccount(t *testing.T) {
	k := auth.NewKeyring()
	k.Register("alice", []byte("secret-a"))
	k.Register("bob", []byte("secret-b"))

	// bob no puede actuar como alice con su propia firma
	ctx := auth.WithSignature(context.Background(), "bob", auth.Sign([]byte("secret-b"), "bob"))
	assert.ErrorIs(t, k.Verify(ctx, "alice"), domain.ErrUnauthorized)
}

func TestKeyring_NoSignature(t *testing.T) {
	k := auth.NewKeyring()
	k.Register("alice", []byte("secret-a"))
	assert.ErrorIs(t, k.Verify(context.Background(), "alice"), domain.ErrUnauthorized)
}

func TestKeyring_MalformedSignature(t *testing.T) {
	k := auth.NewKeyring()
	k.Register("alice", []byte("secret-a"))

	ctx := auth.WithSignature(context.Background(), "alice", "not-hex!")
	assert.ErrorIs(t, k.Verify(ctx, "alice"), domain.ErrUnauthorized)
}

func TestKeyring_UnknownAccount(t *testing.T) {
	k := auth.NewKeyring()
	ctx := auth.WithSignature(context.Background(), "ghost", "deadbeef")
	assert.ErrorIs(t, k.Verify(ctx, "ghost"), domain.ErrUnauthorized)
}
