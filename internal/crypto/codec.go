package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

const (
	saltLen = 16

	// aeadTagLen is the GCM authentication tag size
	aeadTagLen = 16
)

// ErrDecryptionFailed covers a wrong password, a wrong salt and corrupted
// ciphertext alike. Callers must not be able to tell these apart.
var ErrDecryptionFailed = errors.New("incorrect password or corrupted data")

// Codec encrypts wallet secrets under a password derived key.
//
// Ciphertext layout is base64(nonce || sealed), the salt is returned
// separately as hex and has to be stored next to the ciphertext.
type Codec struct {
	kdf  KDF
	aead AEAD
	rand io.Reader
}

// Option configures a Codec
type Option func(*Codec)

// WithKDF replaces the key derivation function
func WithKDF(kdf KDF) Option {
	return func(c *Codec) { c.kdf = kdf }
}

// WithAEAD replaces the authenticated cipher
func WithAEAD(aead AEAD) Option {
	return func(c *Codec) { c.aead = aead }
}

// WithRandom replaces the source used for salts and nonces
func WithRandom(r io.Reader) Option {
	return func(c *Codec) { c.rand = r }
}

// NewCodec creates a codec using PBKDF2-SHA256 (100k iterations) and AES-256-GCM by default
func NewCodec(opts ...Option) *Codec {
	c := &Codec{
		kdf:  PBKDF2{Iterations: MinPBKDF2Iterations},
		aead: AESGCM{},
		rand: rand.Reader,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encrypt seals secret with a key derived from password and a fresh salt.
// Every call uses a new salt and a new nonce.
// password must be []byte for security (caller should zero it after use)
func (c *Codec) Encrypt(secret, password []byte) (ciphertext string, salt string, err error) {
	// Generate salt and nonce
	saltBytes := make([]byte, saltLen)
	if _, err := io.ReadFull(c.rand, saltBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(c.rand, nonce); err != nil {
		return "", "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Derive key from password
	key, err := c.kdf.DeriveKey(password, saltBytes)
	if err != nil {
		return "", "", fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key) // wipe derived key from memory

	sealed, err := c.aead.Seal(key, nonce, secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to encrypt secret: %w", err)
	}

	payload := make([]byte, 0, len(nonce)+len(sealed))
	payload = append(payload, nonce...)
	payload = append(payload, sealed...)

	return base64.StdEncoding.EncodeToString(payload), hex.EncodeToString(saltBytes), nil
}

// Decrypt opens a ciphertext produced by Encrypt.
// Any failure is reported as ErrDecryptionFailed. The key derivation and
// the authenticated open run on every path, malformed input included.
// Caller should clear the returned secret after use.
func (c *Codec) Decrypt(ciphertext string, password []byte, salt string) ([]byte, error) {
	nonceSize := c.aead.NonceSize()
	malformed := false

	saltBytes, err := hex.DecodeString(salt)
	if err != nil || len(saltBytes) == 0 {
		saltBytes = make([]byte, saltLen)
		malformed = true
	}

	payload, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil || len(payload) <= nonceSize {
		// zero nonce and a zero tag-sized body; the open result is discarded
		payload = make([]byte, nonceSize+aeadTagLen)
		malformed = true
	}

	// Derive key from password
	key, err := c.kdf.DeriveKey(password, saltBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	plaintext, err := c.aead.Open(key, payload[:nonceSize], payload[nonceSize:])
	if err != nil || malformed {
		clear(plaintext)
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}
