package nillion

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

const (
	// didPrefix is the method prefix of identifiers issued on the Nillion network
	didPrefix = "did:nil:"

	secretHexLen = 64 // 32 bytes
)

// ErrInvalidSecretFormat is returned when a secret is not a 64-character hex string
var ErrInvalidSecretFormat = errors.New("invalid secret format: expected 64 hex characters")

// Keypair is a secp256k1 keypair used to authenticate against nilDB nodes
type Keypair struct {
	priv *secp256k1.PrivateKey
}

// Derive builds a keypair from a hex encoded secret.
// The secret may carry a 0x prefix; letters may be upper or lower case.
// The same secret always yields the same keypair and identifier.
func Derive(secretHex string) (*Keypair, string, error) {
	seed, err := DecodeSecret(secretHex)
	if err != nil {
		return nil, "", err
	}
	defer clear(seed) // wipe raw secret bytes from memory

	// Reject scalars that are not valid private keys (zero or >= curve order)
	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(seed); overflow || scalar.IsZero() {
		scalar.Zero()
		return nil, "", fmt.Errorf("%w: value is not a valid secp256k1 scalar", ErrInvalidSecretFormat)
	}

	kp := &Keypair{priv: secp256k1.NewPrivateKey(&scalar)}
	return kp, kp.DID(), nil
}

// GenerateRandom creates a fresh keypair from the system's secure random source
func GenerateRandom() (*Keypair, string, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate private key: %w", err)
	}

	kp := &Keypair{priv: priv}
	return kp, kp.DID(), nil
}

// ValidateSecret reports whether secretHex has the expected format
func ValidateSecret(secretHex string) error {
	_, err := normalizeSecret(secretHex)
	return err
}

// NormalizeSecret strips the 0x prefix and lower-cases the secret after validating it
func NormalizeSecret(secretHex string) (string, error) {
	return normalizeSecret(secretHex)
}

// DecodeSecret validates secretHex and returns its 32 raw bytes.
// Caller should clear the returned slice after use.
func DecodeSecret(secretHex string) ([]byte, error) {
	clean, err := normalizeSecret(secretHex)
	if err != nil {
		return nil, err
	}

	seed, err := hex.DecodeString(clean)
	if err != nil {
		return nil, ErrInvalidSecretFormat
	}
	return seed, nil
}

func normalizeSecret(secretHex string) (string, error) {
	clean := strings.TrimPrefix(secretHex, "0x")

	if len(clean) != secretHexLen {
		return "", fmt.Errorf("%w: got %d characters", ErrInvalidSecretFormat, len(clean))
	}
	for i := 0; i < len(clean); i++ {
		if !isHexChar(clean[i]) {
			// position only, never the character itself
			return "", fmt.Errorf("%w: non-hex character at position %d", ErrInvalidSecretFormat, i)
		}
	}
	return strings.ToLower(clean), nil
}

func isHexChar(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// PublicKey returns the 33-byte compressed public key
func (k *Keypair) PublicKey() []byte {
	return k.priv.PubKey().SerializeCompressed()
}

// DID returns the decentralized identifier of the keypair
func (k *Keypair) DID() string {
	return didPrefix + hex.EncodeToString(k.PublicKey())
}

// SecretHex returns the private key as lower-case hex.
// Only used to hand freshly generated keys to the import path.
func (k *Keypair) SecretHex() string {
	b := k.priv.Serialize()
	defer clear(b)
	return hex.EncodeToString(b)
}

// SignCompact signs a 32-byte digest and returns the 64-byte r||s signature
func (k *Keypair) SignCompact(digest []byte) []byte {
	// SignCompact prepends a recovery byte
	sig := ecdsa.SignCompact(k.priv, digest, true)
	return sig[1:]
}

// Zero wipes the private scalar. The keypair is unusable afterwards.
func (k *Keypair) Zero() {
	if k == nil || k.priv == nil {
		return
	}
	k.priv.Zero()
}

// ParseDID extracts the compressed public key from a did:nil identifier
func ParseDID(did string) (*secp256k1.PublicKey, error) {
	if !strings.HasPrefix(did, didPrefix) {
		return nil, fmt.Errorf("identifier must start with %s", didPrefix)
	}

	raw, err := hex.DecodeString(strings.TrimPrefix(did, didPrefix))
	if err != nil {
		return nil, fmt.Errorf("failed to decode identifier: %w", err)
	}

	pub, err := secp256k1.ParsePubKey(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return pub, nil
}

// ShortDID returns the first n characters of the key part of a did:nil identifier
func ShortDID(did string, n int) string {
	key := strings.TrimPrefix(did, didPrefix)
	if len(key) <= n {
		return key
	}
	return key[:n]
}
