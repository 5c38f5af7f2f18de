package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)

	token, expiresAt, err := signer.Generate("doc-1", "students/s-1/tor.pdf")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	docID, relPath, _, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", docID)
	assert.Equal(t, "students/s-1/tor.pdf", relPath)
}

func TestSignedURLRejectsTamperedToken(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)

	token, _, err := signer.Generate("doc-1", "students/s-1/tor.pdf")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token + "x")
	assert.Error(t, err)
}

func TestSignedURLRejectsWrongSecret(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	other := NewSignedURLSigner("other", time.Minute)

	token, _, err := signer.Generate("doc-1", "students/s-1/tor.pdf")
	require.NoError(t, err)

	_, _, _, err = other.Parse(token)
	assert.Error(t, err)
}

func TestSignedURLRejectsExpiredToken(t *testing.T) {
	signer := SignedURLSigner{secret: []byte("secret"), ttl: -time.Minute}

	token, _, err := signer.Generate("doc-1", "students/s-1/tor.pdf")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token)
	assert.ErrorContains(t, err, "expired")
}

func TestSignedURLRequiresArguments(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)

	_, _, err := signer.Generate("", "path")
	assert.Error(t, err)

	_, _, err = signer.Generate("doc-1", "")
	assert.Error(t, err)
}
