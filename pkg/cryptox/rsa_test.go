package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBodyDecryptorRoundTrip(t *testing.T) {
	t.Parallel()

	pemKey, err := GenerateRSAKey(2048)
	require.NoError(t, err)

	dec, err := NewBodyDecryptor(pemKey)
	require.NoError(t, err)

	payload := []byte(`{"email":"admin@example.com","password":"Secret1!"}`)
	ciphertext, err := dec.Encrypt(payload)
	require.NoError(t, err)

	plain, err := dec.Decrypt(ciphertext)
	require.NoError(t, err)
	require.Equal(t, payload, plain)
}

func TestBodyDecryptorRejectsBadInput(t *testing.T) {
	t.Parallel()

	pemKey, err := GenerateRSAKey(2048)
	require.NoError(t, err)

	dec, err := NewBodyDecryptor(pemKey)
	require.NoError(t, err)

	_, err = dec.Decrypt("not-base64!!")
	require.ErrorIs(t, err, ErrDecrypt)

	_, err = dec.Decrypt("aGVsbG8gd29ybGQ=")
	require.ErrorIs(t, err, ErrDecrypt)
}

func TestNewBodyDecryptorRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := NewBodyDecryptor([]byte("not a pem key"))
	require.Error(t, err)
}

func TestGenerateRSAKeyRejectsWeakSize(t *testing.T) {
	t.Parallel()

	_, err := GenerateRSAKey(1024)
	require.Error(t, err)
}
