package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/nilz-wallet/internal/crypto"
	"github.com/AlexZinkM/nilz-wallet/internal/storage"
	"github.com/AlexZinkM/nilz-wallet/nillion"
)

var testSecret = strings.Repeat("a", 64)

// fastKDF keeps tests quick; real KDF parameters are covered in the crypto package
type fastKDF struct{}

func (fastKDF) DeriveKey(password, salt []byte) ([]byte, error) {
	key := make([]byte, crypto.KeyLen)
	for i := range key {
		key[i] = byte(i)
		if len(password) > 0 {
			key[i] ^= password[i%len(password)]
		}
		if len(salt) > 0 {
			key[i] ^= salt[i%len(salt)]
		}
	}
	return key, nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T, backend storage.Backend) (*Store, *crypto.Codec, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)}
	codec := crypto.NewCodec(crypto.WithKDF(fastKDF{}))
	return NewStore(backend, codec, zerolog.Nop(), WithClock(clock.Now)), codec, clock
}

func TestStore_Scenario(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t, storage.NewMemory())

	records, err := s.ImportSecret(ctx, testSecret, []byte("pw1"), "")
	require.NoError(t, err)
	require.Len(t, records, 2)

	var testnetID string
	for _, r := range records {
		if r.Network == nillion.Testnet {
			testnetID = r.ID
		}
	}
	require.NotEmpty(t, testnetID)

	require.NoError(t, s.SetActive(ctx, testnetID))
	ws, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, testnetID, ws.ActiveWalletID)

	require.NoError(t, s.Remove(ctx, testnetID))
	ws, err = s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ws.ActiveWalletID)
	assert.Len(t, ws.ImportedWallets, 1)
}

func TestStore_ImportCreatesOneRecordPerNetwork(t *testing.T) {
	ctx := context.Background()
	s, codec, _ := newTestStore(t, storage.NewMemory())

	records, err := s.ImportSecret(ctx, "0x"+testSecret, []byte("pw1"), "")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, nillion.Testnet, records[0].Network)
	assert.Equal(t, nillion.Mainnet, records[1].Network)
	assert.NotEqual(t, records[0].ID, records[1].ID)
	assert.NotEqual(t, records[0].Salt, records[1].Salt)
	assert.NotEqual(t, records[0].Ciphertext, records[1].Ciphertext)

	_, did, err := nillion.Derive(testSecret)
	require.NoError(t, err)

	for _, r := range records {
		assert.Equal(t, did, r.Identifier)
		assert.True(t, strings.HasPrefix(r.ID, "wallet_1751371200000_"+r.Network.String()+"_"))
		assert.Equal(t, fmt.Sprintf("Wallet %s...", nillion.ShortDID(did, 8)), r.Name)
		assert.Equal(t, r.CreatedAt, r.LastUsed)

		// same underlying secret, each under its own salt
		secret, err := codec.Decrypt(r.Ciphertext, []byte("pw1"), r.Salt)
		require.NoError(t, err)
		assert.Equal(t, testSecret, string(secret))
	}

	// one record's salt cannot open the other record's ciphertext
	_, err = codec.Decrypt(records[0].Ciphertext, []byte("pw1"), records[1].Salt)
	assert.ErrorIs(t, err, crypto.ErrDecryptionFailed)
}

func TestStore_ImportKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t, storage.NewMemory())

	_, err := s.ImportSecret(ctx, testSecret, []byte("pw"), "first")
	require.NoError(t, err)
	_, err = s.ImportSecret(ctx, strings.Repeat("b", 64), []byte("pw"), "second")
	require.NoError(t, err)

	ws, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, ws.ImportedWallets, 4)

	names := []string{}
	for _, r := range ws.ImportedWallets {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"first", "first", "second", "second"}, names)
}

func TestStore_ImportInvalidSecretPersistsNothing(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	s, _, _ := newTestStore(t, backend)

	for _, secret := range []string{strings.Repeat("a", 63), strings.Repeat("x", 64)} {
		records, err := s.ImportSecret(ctx, secret, []byte("pw"), "")
		require.ErrorIs(t, err, nillion.ErrInvalidSecretFormat)
		assert.Nil(t, records)
	}

	_, err := backend.Get(ctx, StorageKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

// failingEncrypter fails on the n-th call
type failingEncrypter struct {
	inner Encrypter
	n     int
	calls int
}

func (f *failingEncrypter) Encrypt(secret, password []byte) (string, string, error) {
	f.calls++
	if f.calls == f.n {
		return "", "", errors.New("entropy exhausted")
	}
	return f.inner.Encrypt(secret, password)
}

func TestStore_ImportIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	enc := &failingEncrypter{inner: crypto.NewCodec(crypto.WithKDF(fastKDF{})), n: 2}
	s := NewStore(backend, enc, zerolog.Nop())

	records, err := s.ImportSecret(ctx, testSecret, []byte("pw"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mainnet")
	assert.Nil(t, records)

	ws, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ws.ImportedWallets)
}

func TestStore_SetActive(t *testing.T) {
	ctx := context.Background()
	s, _, clock := newTestStore(t, storage.NewMemory())

	records, err := s.ImportSecret(ctx, testSecret, []byte("pw"), "")
	require.NoError(t, err)

	clock.Advance(time.Minute)
	require.NoError(t, s.SetActive(ctx, records[1].ID))

	active, err := s.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, records[1].ID, active.ID)
	assert.Equal(t, records[1].CreatedAt+time.Minute.Milliseconds(), active.LastUsed)

	// the other record is untouched
	other, err := s.Get(ctx, records[0].ID)
	require.NoError(t, err)
	assert.Equal(t, records[0], other)

	err = s.SetActive(ctx, "wallet_missing")
	require.ErrorIs(t, err, ErrRecordNotFound)

	// failed selection leaves the previous one in place
	ws, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, records[1].ID, ws.ActiveWalletID)
}

func TestStore_RemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t, storage.NewMemory())

	records, err := s.ImportSecret(ctx, testSecret, []byte("pw"), "")
	require.NoError(t, err)
	id := records[0].ID

	require.NoError(t, s.SetActive(ctx, records[1].ID))
	require.NoError(t, s.Remove(ctx, id))
	require.NoError(t, s.Remove(ctx, id))
	require.NoError(t, s.Remove(ctx, "never-existed"))

	err = s.SetActive(ctx, id)
	require.ErrorIs(t, err, ErrRecordNotFound)

	// removing a non-active record keeps the selection
	ws, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, records[1].ID, ws.ActiveWalletID)
	assert.Len(t, ws.ImportedWallets, 1)
}

func TestStore_Touch(t *testing.T) {
	ctx := context.Background()
	s, _, clock := newTestStore(t, storage.NewMemory())

	records, err := s.ImportSecret(ctx, testSecret, []byte("pw"), "named")
	require.NoError(t, err)

	clock.Advance(time.Hour)
	require.NoError(t, s.Touch(ctx, records[0].ID))

	got, err := s.Get(ctx, records[0].ID)
	require.NoError(t, err)

	want := records[0]
	want.LastUsed += time.Hour.Milliseconds()
	assert.Equal(t, want, got)

	ws, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ws.ActiveWalletID)

	assert.ErrorIs(t, s.Touch(ctx, "missing"), ErrRecordNotFound)
}

func TestStore_ActiveWithoutSelection(t *testing.T) {
	s, _, _ := newTestStore(t, storage.NewMemory())
	_, err := s.Active(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveWallet)
}

func TestStore_PersistedLayout(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	s, _, _ := newTestStore(t, backend)

	records, err := s.ImportSecret(ctx, testSecret, []byte("pw"), "")
	require.NoError(t, err)
	require.NoError(t, s.SetActive(ctx, records[0].ID))

	raw, err := backend.Get(ctx, StorageKey)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Contains(t, doc, "importedWallets")
	assert.Contains(t, doc, "activeWalletId")

	var wallets []map[string]any
	require.NoError(t, json.Unmarshal(doc["importedWallets"], &wallets))
	require.Len(t, wallets, 2)
	for _, w := range wallets {
		for _, field := range []string{"id", "name", "identifier", "network", "ciphertext", "salt", "createdAt", "lastUsed"} {
			assert.Contains(t, w, field)
		}
		assert.NotContains(t, string(raw), testSecret)
	}
}

func TestStore_ReadsThroughToBackend(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	s1, _, _ := newTestStore(t, backend)
	s2, _, _ := newTestStore(t, backend)

	records, err := s1.ImportSecret(ctx, testSecret, []byte("pw"), "")
	require.NoError(t, err)

	// a second store over the same backend sees the write immediately
	require.NoError(t, s2.SetActive(ctx, records[0].ID))
	ws, err := s1.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, records[0].ID, ws.ActiveWalletID)
}

func TestStore_DanglingActiveIDIsIgnored(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	require.NoError(t, backend.Set(ctx, StorageKey, []byte(`{"importedWallets":[],"activeWalletId":"gone"}`)))

	s, _, _ := newTestStore(t, backend)
	ws, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ws.ActiveWalletID)
}

// brokenBackend fails every call
type brokenBackend struct{}

func (brokenBackend) Get(context.Context, string) ([]byte, error) {
	return nil, &storage.Error{Op: "get", Key: StorageKey, Err: errors.New("disk gone")}
}

func (brokenBackend) Set(context.Context, string, []byte) error {
	return &storage.Error{Op: "set", Key: StorageKey, Err: errors.New("disk gone")}
}

func (brokenBackend) Close() error { return nil }

func TestStore_StorageUnavailable(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t, brokenBackend{})

	_, err := s.List(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageUnavailable)

	_, err = s.ImportSecret(ctx, testSecret, []byte("pw"), "")
	assert.ErrorIs(t, err, storage.ErrStorageUnavailable)

	assert.ErrorIs(t, s.SetActive(ctx, "x"), storage.ErrStorageUnavailable)
	assert.ErrorIs(t, s.Remove(ctx, "x"), storage.ErrStorageUnavailable)
	assert.ErrorIs(t, s.Touch(ctx, "x"), storage.ErrStorageUnavailable)
}

func TestStore_CorruptedDocument(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	require.NoError(t, backend.Set(ctx, StorageKey, []byte(`{"importedWallets":"nope"}`)))

	s, _, _ := newTestStore(t, backend)
	_, err := s.List(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageUnavailable)
}

func TestStore_ConcurrentMutationsDoNotLoseUpdates(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	backend, err := storage.NewFile(dir)
	require.NoError(t, err)
	s, _, _ := newTestStore(t, backend)

	seed, err := s.ImportSecret(ctx, testSecret, []byte("pw"), "seed")
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers*2)
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			secret := fmt.Sprintf("%064x", i+1)
			if _, err := s.ImportSecret(ctx, secret, []byte("pw"), ""); err != nil {
				errs <- err
			}
		}(i)
		go func() {
			defer wg.Done()
			if err := s.SetActive(ctx, seed[0].ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	ws, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, ws.ImportedWallets, 2+workers*2)
	assert.Equal(t, seed[0].ID, ws.ActiveWalletID)
}

func TestStore_TwoStoresOneDirectory(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	// separate handles stand in for separate processes sharing the directory
	stores := make([]*Store, 2)
	for i := range stores {
		backend, err := storage.NewFile(dir)
		require.NoError(t, err)
		stores[i], _, _ = newTestStore(t, backend)
	}

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers*len(stores))
	for si, s := range stores {
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(s *Store, n int) {
				defer wg.Done()
				secret := fmt.Sprintf("%064x", n+1)
				if _, err := s.ImportSecret(ctx, secret, []byte("pw"), ""); err != nil {
					errs <- err
				}
			}(s, si*workers+i)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	for _, s := range stores {
		ws, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, ws.ImportedWallets, 2*workers*len(stores))
	}
}

func TestStore_LockFailureAbortsMutation(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	holder, err := storage.NewFile(dir)
	require.NoError(t, err)
	unlock, err := holder.Lock(ctx)
	require.NoError(t, err)
	defer unlock()

	backend, err := storage.NewFile(dir)
	require.NoError(t, err)
	s, _, _ := newTestStore(t, backend)

	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	_, err = s.ImportSecret(short, testSecret, []byte("pw"), "")
	require.Error(t, err)
	assert.True(t, storage.IsUnavailable(err))

	ws, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ws.ImportedWallets)
}

func TestStore_Generate(t *testing.T) {
	ctx := context.Background()
	s, codec, _ := newTestStore(t, storage.NewMemory())

	records, err := s.Generate(ctx, []byte("pw"), "fresh")
	require.NoError(t, err)
	require.Len(t, records, 2)

	secret, err := codec.Decrypt(records[0].Ciphertext, []byte("pw"), records[0].Salt)
	require.NoError(t, err)

	_, did, err := nillion.Derive(string(secret))
	require.NoError(t, err)
	assert.Equal(t, records[0].Identifier, did)
	assert.Equal(t, records[1].Identifier, did)
}
