package sealed

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	plaintext := []byte("rt:\n  base_url: https://rt.example.com/REST/1.0/\n")

	ciphertext, err := Seal(plaintext, "correct horse battery staple")
	require.NoError(t, err)
	assert.NotContains(t, string(ciphertext), "rt.example.com", "ciphertext must not leak plaintext")

	opened, err := Open(ciphertext, "correct horse battery staple")
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestOpenWrongPassphrase(t *testing.T) {
	ciphertext, err := Seal([]byte("secret config"), "right")
	require.NoError(t, err)

	_, err = Open(ciphertext, "wrong")
	var decryptErr *DecryptError
	require.Error(t, err)
	assert.True(t, errors.As(err, &decryptErr), "want DecryptError, got %T", err)
}

func TestOpenCorruptFile(t *testing.T) {
	_, err := Open([]byte("this was never sealed"), "anything")
	var decryptErr *DecryptError
	require.Error(t, err)
	assert.True(t, errors.As(err, &decryptErr), "want DecryptError, got %T", err)
}

func TestOpenTamperedCiphertext(t *testing.T) {
	ciphertext, err := Seal([]byte("secret config"), "passphrase")
	require.NoError(t, err)
	ciphertext[len(ciphertext)-1] ^= 0xff

	_, err = Open(ciphertext, "passphrase")
	var decryptErr *DecryptError
	require.Error(t, err)
	assert.True(t, errors.As(err, &decryptErr), "want DecryptError, got %T", err)
}
