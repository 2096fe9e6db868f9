// Package sealed encrypts and decrypts the dashboard configuration file.
// It wraps filippo.io/age's scrypt recipient, so the file is protected by a
// single passphrase with an authenticated cipher: a wrong passphrase or a
// tampered file fails cleanly instead of yielding garbage.
package sealed

import (
	"bytes"
	"fmt"
	"io"

	"filippo.io/age"
)

// DecryptError means the sealed file could not be opened: wrong passphrase,
// truncated ciphertext, or a file that is not age output at all. The process
// must not start when config decryption fails.
type DecryptError struct {
	Err error
}

func (e *DecryptError) Error() string {
	return fmt.Sprintf("opening sealed config: %v", e.Err)
}

func (e *DecryptError) Unwrap() error { return e.Err }

// Seal encrypts plaintext with the passphrase.
func Seal(plaintext []byte, passphrase string) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("building scrypt recipient: %w", err)
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, recipient)
	if err != nil {
		return nil, fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing plaintext: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}
	return ciphertext.Bytes(), nil
}

// Open decrypts a sealed file with the passphrase. Any failure is reported
// as a *DecryptError.
func Open(ciphertext []byte, passphrase string) ([]byte, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, &DecryptError{Err: err}
	}
	reader, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, &DecryptError{Err: err}
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, &DecryptError{Err: err}
	}
	return plaintext, nil
}
