package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"

	"golang.org/x/crypto/scrypt"

	"github.com/platewise/platewise/pkg/errors"
)

// Encryption parameters. The scrypt cost settings follow the usual
// interactive-login recommendation; the salt is stored as a prefix of the
// ciphertext blob so each save re-derives a fresh key.
const (
	saltSize = 16
	keySize  = 32 // AES-256
	scryptN  = 1 << 14
	scryptR  = 8
	scryptP  = 1
)

// crypter encrypts and decrypts the config document with a key derived
// from the user passphrase.
type crypter struct {
	passphrase []byte
}

func newCrypter(passphrase string) (*crypter, error) {
	if passphrase == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "passphrase cannot be empty").
			WithUserMessage("Passphrase cannot be empty.")
	}
	return &crypter{passphrase: []byte(passphrase)}, nil
}

func (c *crypter) deriveKey(salt []byte) ([]byte, error) {
	return scrypt.Key(c.passphrase, salt, scryptN, scryptR, scryptP, keySize)
}

// encrypt returns salt || nonce || ciphertext.
func (c *crypter) encrypt(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}

	key, err := c.deriveKey(salt)
	if err != nil {
		return nil, err
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	out := make([]byte, 0, saltSize+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// decrypt reverses encrypt. A wrong passphrase surfaces as CONFIG_DECRYPT,
// never as a panic or a garbage document.
func (c *crypter) decrypt(data []byte) ([]byte, error) {
	if len(data) < saltSize {
		return nil, errors.ConfigDecrypt()
	}
	salt, rest := data[:saltSize], data[saltSize:]

	key, err := c.deriveKey(salt)
	if err != nil {
		return nil, err
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(rest) < gcm.NonceSize() {
		return nil, errors.ConfigDecrypt()
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.ConfigDecrypt()
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
