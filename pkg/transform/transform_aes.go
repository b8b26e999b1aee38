package transform

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// keySalt is fixed so the same passphrase opens snapshots written by any
// process. Each message still gets a random nonce.
var keySalt = []byte("xlib-go/snapshot/v1")

func keyFromPassphrase(passphrase string) []byte {
	return argon2.IDKey([]byte(passphrase), keySalt, 1, 64*1024, 4, 32)
}

type aesGCMTransform struct{ gcm cipher.AEAD }

func NewAESGCMTransform(passphrase string) (Transform, error) {
	block, err := aes.NewCipher(keyFromPassphrase(passphrase))
	if err != nil {
		return nil, fmt.Errorf("aesgcm: failed to create cipher block: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("aesgcm: failed to create GCM: %w", err)
	}
	return &aesGCMTransform{gcm: gcm}, nil
}

func (e *aesGCMTransform) Apply(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("aesgcm apply (encrypt): failed to generate nonce: %w", err)
	}
	return e.gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (e *aesGCMTransform) Reverse(ciphertext []byte) ([]byte, error) {
	nonceSize := e.gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, errors.New("aesgcm reverse (decrypt): ciphertext too short")
	}
	nonce, msg := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := e.gcm.Open(nil, nonce, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("aesgcm reverse (decrypt): failed to open GCM message: %w", err)
	}
	return plaintext, nil
}
