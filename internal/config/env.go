package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"

	"github.com/AlexZinkM/nilz-wallet/internal/crypto"
	"github.com/AlexZinkM/nilz-wallet/internal/storage"
	"github.com/AlexZinkM/nilz-wallet/nillion"
)

// Supported NILZ_KDF values
const (
	KDFPBKDF2 = "pbkdf2"
	KDFScrypt = "scrypt"
)

// NewKDF returns the configured key derivation provider
func (c *Config) NewKDF() crypto.KDF {
	if c.KDF == KDFScrypt {
		return crypto.DefaultScrypt()
	}
	return crypto.PBKDF2{Iterations: c.KDFIterations}
}

// Config contains all configuration parameters for the application.
// Note: Password is prompted at runtime and stored in memory - use GetPasswordBytes()
type Config struct {
	Network           nillion.Network `envconfig:"NILZ_NETWORK" default:"testnet"`
	APIKey            string          `envconfig:"NILZ_API_KEY"`
	StorageBackend    storage.Kind    `envconfig:"NILZ_STORAGE_BACKEND" default:"file"`
	StoragePath       string          `envconfig:"NILZ_STORAGE_PATH" default:"~/.nilz"`
	Port              string          `envconfig:"PORT" default:"8080"`
	LogLevel          string          `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat         string          `envconfig:"LOG_FORMAT" default:"console"`
	KDF               string          `envconfig:"NILZ_KDF" default:"pbkdf2"`
	KDFIterations     int             `envconfig:"NILZ_KDF_ITERATIONS" default:"100000"`
	HTTPTimeout       time.Duration   `envconfig:"NILZ_HTTP_TIMEOUT" default:"15s"`
	QueryPollAttempts int             `envconfig:"NILZ_QUERY_POLL_ATTEMPTS" default:"30"`
	QueryPollInterval time.Duration   `envconfig:"NILZ_QUERY_POLL_INTERVAL" default:"1s"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c, err := Load()
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

// Load reads and validates configuration without touching the global instance
func Load() (*Config, error) {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	path, err := expandHome(c.StoragePath)
	if err != nil {
		return nil, err
	}
	c.StoragePath = path
	return c, nil
}

// Validate checks values envconfig cannot check by itself
func (c *Config) Validate() error {
	if _, err := nillion.ParseNetwork(string(c.Network)); err != nil {
		return fmt.Errorf("NILZ_NETWORK: %w", err)
	}
	switch c.StorageBackend {
	case storage.KindFile, storage.KindBadger:
	default:
		return fmt.Errorf("NILZ_STORAGE_BACKEND: unsupported backend %q", c.StorageBackend)
	}
	if c.StoragePath == "" {
		return errors.New("NILZ_STORAGE_PATH must not be empty")
	}
	if c.KDF != KDFPBKDF2 && c.KDF != KDFScrypt {
		return fmt.Errorf("NILZ_KDF: unsupported key derivation %q", c.KDF)
	}
	if c.KDFIterations < crypto.MinPBKDF2Iterations {
		return fmt.Errorf("NILZ_KDF_ITERATIONS must be at least %d", crypto.MinPBKDF2Iterations)
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("NILZ_HTTP_TIMEOUT must be positive")
	}
	if c.QueryPollAttempts < 1 {
		return errors.New("NILZ_QUERY_POLL_ATTEMPTS must be at least 1")
	}
	if c.QueryPollInterval < 0 {
		return errors.New("NILZ_QUERY_POLL_INTERVAL must not be negative")
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

var passwordBytes []byte

// PromptForPassword prompts the user for the wallet password in the terminal.
// The password is read without echoing (hidden input) and stored in memory.
// Call this at startup before the server begins handling requests.
func PromptForPassword() error {
	raw, err := ReadPassword("Enter wallet password: ")
	if err != nil {
		return err
	}
	SetPassword(raw)
	clear(raw)
	return nil
}

// ReadPassword reads one hidden line from the terminal.
// Caller must zero the returned slice after use.
func ReadPassword(prompt string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run the app interactively to enter password")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	return raw, nil
}

// SetPassword stores a copy of password in memory
func SetPassword(password []byte) {
	ClearPassword()
	passwordBytes = make([]byte, len(password))
	copy(passwordBytes, password)
}

// ClearPassword wipes the stored password
func ClearPassword() {
	clear(passwordBytes)
	passwordBytes = nil
}

// GetPasswordBytes returns the password stored in memory (from PromptForPassword).
// Returns an error if the password was not set.
// Caller must zero the returned slice after use for security.
func GetPasswordBytes() ([]byte, error) {
	if len(passwordBytes) == 0 {
		return nil, errors.New("password not set: call PromptForPassword at startup")
	}
	out := make([]byte, len(passwordBytes))
	copy(out, passwordBytes)
	return out, nil
}
