package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/AlexZinkM/nilz-wallet/internal/client"
	"github.com/AlexZinkM/nilz-wallet/internal/config"
	"github.com/AlexZinkM/nilz-wallet/internal/crypto"
	"github.com/AlexZinkM/nilz-wallet/internal/logger"
	"github.com/AlexZinkM/nilz-wallet/internal/model"
	"github.com/AlexZinkM/nilz-wallet/internal/storage"
	"github.com/AlexZinkM/nilz-wallet/internal/vault"
	"github.com/AlexZinkM/nilz-wallet/internal/wallet"
)

// app holds the wired components shared by every command
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	backend storage.Backend
	codec   *crypto.Codec
	store   *wallet.Store
	factory *vault.Factory
}

var a = &app{}

func (a *app) open() error {
	if err := config.Init(); err != nil {
		return err
	}
	a.cfg = config.Get()

	log, err := logger.New(a.cfg.LogLevel, a.cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}
	a.log = log

	a.backend, err = storage.Open(a.cfg.StorageBackend, a.cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}

	a.codec = crypto.NewCodec(crypto.WithKDF(a.cfg.NewKDF()))
	a.store = wallet.NewStore(a.backend, a.codec, a.log)
	a.factory = vault.NewFactory(a.codec, a.store, client.Dialer(a.cfg.APIKey, a.cfg.HTTPTimeout, a.log), a.log)

	a.log.Debug().
		Str("network", a.cfg.Network.String()).
		Str("storage", string(a.cfg.StorageBackend)).
		Str("path", a.cfg.StoragePath).
		Msg("nilz started")
	return nil
}

func (a *app) close() {
	config.ClearPassword()
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close storage")
		}
	}
}

// record resolves the --wallet flag, falling back to the active wallet
// or the first wallet of the configured network
func (a *app) record(ctx context.Context, id string) (model.WalletRecord, error) {
	if id != "" {
		return a.store.Get(ctx, id)
	}

	rec, err := a.store.Active(ctx)
	if err == nil || !errors.Is(err, wallet.ErrNoActiveWallet) {
		return rec, err
	}

	ws, err := a.store.List(ctx)
	if err != nil {
		return model.WalletRecord{}, err
	}
	for _, r := range ws.ImportedWallets {
		if r.Network == a.cfg.Network {
			return r, nil
		}
	}
	return model.WalletRecord{}, wallet.ErrNoActiveWallet
}

// connect prompts for the password and opens a vault session for the record
func (a *app) connect(ctx context.Context, rec model.WalletRecord) (*vault.Session, error) {
	password, err := config.ReadPassword("Enter wallet password: ")
	if err != nil {
		return nil, err
	}
	defer clear(password)

	return a.factory.Connect(ctx, rec, password)
}
