package model

// ImportRequest represents request for POST /wallets/import
type ImportRequest struct {
	Secret string `json:"secret" binding:"required"`
	Name   string `json:"name,omitempty"`
}

// GenerateRequest represents request for POST /wallets/generate
type GenerateRequest struct {
	Name string `json:"name,omitempty"`
}

// ImportResponse represents response for POST /wallets/import and /wallets/generate
type ImportResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Wallets []WalletView `json:"wallets"`
}

// ListResponse represents response for GET /wallets
type ListResponse struct {
	Wallets        []WalletView `json:"wallets"`
	ActiveWalletID string       `json:"activeWalletId,omitempty"`
}

// SetActiveRequest represents request for POST /wallets/active
type SetActiveRequest struct {
	ID string `json:"id" binding:"required"`
}

// QRResponse represents response for GET /wallets/{id}/qr
type QRResponse struct {
	Identifier string `json:"identifier"`
	QR         string `json:"QR"` // base64 PNG
}
