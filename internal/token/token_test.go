package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateValidateRoundTrip(t *testing.T) {
	signer := NewSigner("test-secret", time.Hour)

	tok, err := signer.Generate("alice")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	username, err := signer.Validate(tok)
	require.NoError(t, err)
	require.Equal(t, "alice", username)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	tok, err := NewSigner("secret-a", time.Hour).Generate("alice")
	require.NoError(t, err)

	_, err = NewSigner("secret-b", time.Hour).Validate(tok)
	require.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	signer := NewSigner("test-secret", time.Hour)
	_, err := signer.Validate("not-a-token")
	require.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	signer := NewSigner("test-secret", time.Nanosecond)
	tok, err := signer.Generate("alice")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = signer.Validate(tok)
	require.Error(t, err)
}

func TestZeroTTLFallsBackToDefault(t *testing.T) {
	signer := NewSigner("test-secret", 0)
	tok, err := signer.Generate("alice")
	require.NoError(t, err)

	username, err := signer.Validate(tok)
	require.NoError(t, err)
	require.Equal(t, "alice", username)
}
