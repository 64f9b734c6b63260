// Package wallet owns the persisted wallet records and the active selection.
//
// All mutations are read-modify-write cycles over the whole walletStorage
// document and run one at a time under the store mutex.
package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AlexZinkM/nilz-wallet/internal/common"
	"github.com/AlexZinkM/nilz-wallet/internal/logger"
	"github.com/AlexZinkM/nilz-wallet/internal/model"
	"github.com/AlexZinkM/nilz-wallet/internal/storage"
	"github.com/AlexZinkM/nilz-wallet/nillion"
)

// StorageKey is the key the wallet document is persisted under
const StorageKey = "walletStorage"

var (
	ErrRecordNotFound = errors.New("wallet record not found")
	ErrNoActiveWallet = errors.New("no active wallet selected")
)

// Encrypter seals a secret under a password, returning ciphertext and salt
type Encrypter interface {
	Encrypt(secret, password []byte) (ciphertext string, salt string, err error)
}

// Store is the only writer of the walletStorage document
type Store struct {
	backend storage.Backend
	codec   Encrypter
	log     zerolog.Logger
	now     func() time.Time
	newID   func() string

	mu sync.Mutex
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces the time source used for createdAt/lastUsed
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDSource replaces the random part of record ids
func WithIDSource(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// NewStore creates a store on top of a storage backend
func NewStore(backend storage.Backend, codec Encrypter, log zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		codec:   codec,
		log:     logger.Module(log, "wallet"),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ImportSecret validates secretHex and persists one encrypted record per supported network.
// Either all records of the call are persisted or none are.
// password must be []byte for security (caller should zero it after use)
func (s *Store) ImportSecret(ctx context.Context, secretHex string, password []byte, name string) ([]model.WalletRecord, error) {
	clean, err := nillion.NormalizeSecret(secretHex)
	if err != nil {
		return nil, err
	}
	secret := []byte(clean)
	defer clear(secret) // wipe plaintext bytes from memory

	records := make([]model.WalletRecord, 0, len(nillion.Networks))
	for _, network := range nillion.Networks {
		record, err := s.newRecord(secret, clean, password, name, network)
		if err != nil {
			return nil, fmt.Errorf("failed to create wallet for %s: %w", network, err)
		}
		records = append(records, record)
	}

	err = s.mutate(ctx, func(ws *model.WalletStorage) error {
		ws.ImportedWallets = append(ws.ImportedWallets, records...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, r := range records {
		s.log.Info().Str("id", r.ID).Str("network", r.Network.String()).Str("identifier", r.Identifier).Msg("wallet imported")
	}
	return records, nil
}

// newRecord derives the identifier and encrypts the secret under a fresh salt
func (s *Store) newRecord(secret []byte, clean string, password []byte, name string, network nillion.Network) (model.WalletRecord, error) {
	kp, did, err := nillion.Derive(clean)
	if err != nil {
		return model.WalletRecord{}, err
	}
	kp.Zero()

	ciphertext, salt, err := s.codec.Encrypt(secret, password)
	if err != nil {
		return model.WalletRecord{}, err
	}

	if name == "" {
		name = fmt.Sprintf("Wallet %s...", nillion.ShortDID(did, 8))
	}

	now := common.ToMillis(s.now())
	return model.WalletRecord{
		ID:         fmt.Sprintf("wallet_%d_%s_%s", now, network, s.newID()),
		Name:       name,
		Identifier: did,
		Network:    network,
		Ciphertext: ciphertext,
		Salt:       salt,
		CreatedAt:  now,
		LastUsed:   now,
	}, nil
}

// Generate creates a fresh random secret and imports it
func (s *Store) Generate(ctx context.Context, password []byte, name string) ([]model.WalletRecord, error) {
	kp, _, err := nillion.GenerateRandom()
	if err != nil {
		return nil, err
	}
	defer kp.Zero()

	return s.ImportSecret(ctx, kp.SecretHex(), password, name)
}

// List returns the persisted document. Every call reads from the backend.
func (s *Store) List(ctx context.Context) (model.WalletStorage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

// Get returns the record with the given id
func (s *Store) Get(ctx context.Context, id string) (model.WalletRecord, error) {
	ws, err := s.List(ctx)
	if err != nil {
		return model.WalletRecord{}, err
	}

	i := ws.Find(id)
	if i < 0 {
		return model.WalletRecord{}, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	return ws.ImportedWallets[i], nil
}

// Active returns the currently selected record
func (s *Store) Active(ctx context.Context) (model.WalletRecord, error) {
	ws, err := s.List(ctx)
	if err != nil {
		return model.WalletRecord{}, err
	}

	r, ok := ws.Active()
	if !ok {
		return model.WalletRecord{}, ErrNoActiveWallet
	}
	return r, nil
}

// SetActive selects the record with the given id and updates its lastUsed
func (s *Store) SetActive(ctx context.Context, id string) error {
	err := s.mutate(ctx, func(ws *model.WalletStorage) error {
		i := ws.Find(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
		}
		ws.ActiveWalletID = id
		ws.ImportedWallets[i].LastUsed = common.ToMillis(s.now())
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("id", id).Msg("active wallet changed")
	return nil
}

// Remove deletes the record with the given id, clearing the selection if it was active.
// Removing an unknown id is a no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	removed := false
	err := s.mutate(ctx, func(ws *model.WalletStorage) error {
		i := ws.Find(id)
		if i < 0 {
			return errSkipWrite
		}
		ws.ImportedWallets = append(ws.ImportedWallets[:i], ws.ImportedWallets[i+1:]...)
		if ws.ActiveWalletID == id {
			ws.ActiveWalletID = ""
		}
		removed = true
		return nil
	})
	if err != nil {
		return err
	}

	if removed {
		s.log.Info().Str("id", id).Msg("wallet removed")
	}
	return nil
}

// Touch updates lastUsed of the record without changing anything else
func (s *Store) Touch(ctx context.Context, id string) error {
	return s.mutate(ctx, func(ws *model.WalletStorage) error {
		i := ws.Find(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
		}
		ws.ImportedWallets[i].LastUsed = common.ToMillis(s.now())
		return nil
	})
}

// errSkipWrite lets a mutation finish successfully without writing
var errSkipWrite = errors.New("skip write")

// mutate runs fn on a freshly loaded document and writes the whole document back.
// Backends shared between processes are locked for the whole cycle.
func (s *Store) mutate(ctx context.Context, fn func(ws *model.WalletStorage) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.backend.(storage.Locker); ok {
		unlock, lerr := l.Lock(ctx)
		if lerr != nil {
			return lerr
		}
		defer func() {
			if uerr := unlock(); uerr != nil && err == nil {
				err = uerr
			}
		}()
	}

	ws, err := s.load(ctx)
	if err != nil {
		return err
	}

	if err := fn(&ws); err != nil {
		if errors.Is(err, errSkipWrite) {
			return nil
		}
		return err
	}

	return s.save(ctx, ws)
}

func (s *Store) load(ctx context.Context) (model.WalletStorage, error) {
	ws := model.WalletStorage{ImportedWallets: []model.WalletRecord{}}

	data, err := s.backend.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return ws, nil
	}
	if err != nil {
		return ws, err
	}

	if err := json.Unmarshal(data, &ws); err != nil {
		return ws, &storage.Error{Op: "decode", Key: StorageKey, Err: err}
	}
	if ws.ImportedWallets == nil {
		ws.ImportedWallets = []model.WalletRecord{}
	}
	// a dangling selection is treated as no selection
	if ws.ActiveWalletID != "" && ws.Find(ws.ActiveWalletID) < 0 {
		ws.ActiveWalletID = ""
	}
	return ws, nil
}

func (s *Store) save(ctx context.Context, ws model.WalletStorage) error {
	if ws.ImportedWallets == nil {
		ws.ImportedWallets = []model.WalletRecord{}
	}

	data, err := json.Marshal(ws)
	if err != nil {
		return fmt.Errorf("failed to marshal wallet storage: %w", err)
	}
	return s.backend.Set(ctx, StorageKey, data)
}
