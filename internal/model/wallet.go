package model

import "github.com/AlexZinkM/nilz-wallet/nillion"

// WalletRecord is one encrypted secret bound to one network
type WalletRecord struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Identifier string          `json:"identifier"`
	Network    nillion.Network `json:"network"`
	Ciphertext string          `json:"ciphertext"` // base64(nonce || sealed secret)
	Salt       string          `json:"salt"`       // hex, 16 bytes
	CreatedAt  int64           `json:"createdAt"`  // unix millis
	LastUsed   int64           `json:"lastUsed"`   // unix millis
}

// WalletStorage is the persisted document under the walletStorage key
type WalletStorage struct {
	ImportedWallets []WalletRecord `json:"importedWallets"`
	ActiveWalletID  string         `json:"activeWalletId,omitempty"`
}

// Find returns the index of the record with the given id or -1
func (s *WalletStorage) Find(id string) int {
	for i := range s.ImportedWallets {
		if s.ImportedWallets[i].ID == id {
			return i
		}
	}
	return -1
}

// Active returns the active record, if any
func (s *WalletStorage) Active() (WalletRecord, bool) {
	if s.ActiveWalletID == "" {
		return WalletRecord{}, false
	}
	i := s.Find(s.ActiveWalletID)
	if i < 0 {
		return WalletRecord{}, false
	}
	return s.ImportedWallets[i], true
}

// WalletView is the public part of a record returned by the API (no ciphertext or salt)
type WalletView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
	Network    string `json:"network"`
	CreatedAt  int64  `json:"createdAt"`
	LastUsed   int64  `json:"lastUsed"`
	Active     bool   `json:"active"`
}

// NewWalletView strips the encrypted fields from a record
func NewWalletView(r WalletRecord, activeID string) WalletView {
	return WalletView{
		ID:         r.ID,
		Name:       r.Name,
		Identifier: r.Identifier,
		Network:    r.Network.String(),
		CreatedAt:  r.CreatedAt,
		LastUsed:   r.LastUsed,
		Active:     r.ID == activeID,
	}
}
