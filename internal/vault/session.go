package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/AlexZinkM/nilz-wallet/internal/logger"
	"github.com/AlexZinkM/nilz-wallet/internal/model"
	"github.com/AlexZinkM/nilz-wallet/nillion"
)

// ErrIdentityMismatch means the decrypted secret does not belong to the record's identifier
var ErrIdentityMismatch = errors.New("decrypted secret does not match wallet identifier")

// Decrypter opens a record's ciphertext
type Decrypter interface {
	Decrypt(ciphertext string, password []byte, salt string) ([]byte, error)
}

// Toucher records that a wallet was used
type Toucher interface {
	Touch(ctx context.Context, id string) error
}

// Dialer builds a remote client bound to a keypair
type Dialer func(kp *nillion.Keypair, network nillion.Network) (Client, error)

// Factory turns stored wallet records into usable keypairs and clients
type Factory struct {
	codec Decrypter
	store Toucher
	dial  Dialer
	log   zerolog.Logger
}

// NewFactory creates a session factory. store and dial may be nil.
func NewFactory(codec Decrypter, store Toucher, dial Dialer, log zerolog.Logger) *Factory {
	return &Factory{
		codec: codec,
		store: store,
		dial:  dial,
		log:   logger.Module(log, "vault"),
	}
}

// OpenSession decrypts the record's secret and rederives its keypair.
// A wrong password surfaces as crypto.ErrDecryptionFailed.
// The decrypted secret is wiped before returning; only the keypair leaves.
func (f *Factory) OpenSession(ctx context.Context, record model.WalletRecord, password []byte) (*nillion.Keypair, error) {
	if _, err := nillion.ParseDID(record.Identifier); err != nil {
		return nil, fmt.Errorf("%w: record %s: %v", ErrIdentityMismatch, record.ID, err)
	}

	secret, err := f.codec.Decrypt(record.Ciphertext, password, record.Salt)
	if err != nil {
		return nil, err
	}
	defer clear(secret) // wipe decrypted bytes from memory

	kp, did, err := nillion.Derive(string(secret))
	if err != nil {
		return nil, fmt.Errorf("failed to derive keypair: %w", err)
	}
	if did != record.Identifier {
		kp.Zero()
		return nil, fmt.Errorf("%w: record %s", ErrIdentityMismatch, record.ID)
	}

	if f.store != nil {
		if err := f.store.Touch(ctx, record.ID); err != nil {
			kp.Zero()
			return nil, err
		}
	}

	f.log.Debug().Str("id", record.ID).Str("network", record.Network.String()).Msg("session opened")
	return kp, nil
}

// Session is an open keypair plus the remote client bound to it
type Session struct {
	Record model.WalletRecord
	Client Client

	keypair *nillion.Keypair
}

// DID returns the identifier of the session's keypair
func (s *Session) DID() string {
	return s.keypair.DID()
}

// Close wipes the keypair. The client must not be used afterwards.
func (s *Session) Close() {
	s.keypair.Zero()
}

// Connect opens a session and dials a client for the record's network
func (f *Factory) Connect(ctx context.Context, record model.WalletRecord, password []byte) (*Session, error) {
	if f.dial == nil {
		return nil, errors.New("no vault dialer configured")
	}

	kp, err := f.OpenSession(ctx, record, password)
	if err != nil {
		return nil, err
	}

	client, err := f.dial(kp, record.Network)
	if err != nil {
		kp.Zero()
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	return &Session{Record: record, Client: client, keypair: kp}, nil
}
