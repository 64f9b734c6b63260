package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

const (
	// KeyLen is the symmetric key size (AES-256)
	KeyLen = 32

	// MinPBKDF2Iterations is the lowest PBKDF2 work factor accepted for wallet secrets
	MinPBKDF2Iterations = 100_000
)

// KDF derives a symmetric key from a password and a salt
type KDF interface {
	DeriveKey(password, salt []byte) ([]byte, error)
}

// AEAD seals and opens payloads under a symmetric key
type AEAD interface {
	NonceSize() int
	Seal(key, nonce, plaintext []byte) ([]byte, error)
	Open(key, nonce, ciphertext []byte) ([]byte, error)
}

// PBKDF2 is PBKDF2-HMAC-SHA256
type PBKDF2 struct {
	Iterations int
}

// DeriveKey implements KDF
func (p PBKDF2) DeriveKey(password, salt []byte) ([]byte, error) {
	if p.Iterations < MinPBKDF2Iterations {
		return nil, fmt.Errorf("pbkdf2 iterations must be at least %d", MinPBKDF2Iterations)
	}
	return pbkdf2.Key(password, salt, p.Iterations, KeyLen, sha256.New), nil
}

// Scrypt is the memory-hard alternative KDF.
//
// N=2^18 (~256MB RAM, 0.5-2s) is the desktop default; lower N only for
// constrained environments.
type Scrypt struct {
	N int
	R int
	P int
}

// DefaultScrypt returns the default scrypt parameters
func DefaultScrypt() Scrypt {
	return Scrypt{N: 1 << 18, R: 8, P: 1}
}

// DeriveKey implements KDF
func (s Scrypt) DeriveKey(password, salt []byte) ([]byte, error) {
	key, err := scrypt.Key(password, salt, s.N, s.R, s.P, KeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

// AESGCM is AES-256-GCM with a 12-byte nonce
type AESGCM struct{}

// NonceSize implements AEAD
func (AESGCM) NonceSize() int {
	return 12
}

// Seal implements AEAD
func (AESGCM) Seal(key, nonce, plaintext []byte) ([]byte, error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return aesGCM.Seal(nil, nonce, plaintext, nil), nil
}

// Open implements AEAD
func (AESGCM) Open(key, nonce, ciphertext []byte) ([]byte, error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return aesGCM.Open(nil, nonce, ciphertext, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeyLen {
		return nil, fmt.Errorf("key must be %d bytes", KeyLen)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
