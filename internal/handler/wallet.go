package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/AlexZinkM/nilz-wallet/internal/logger"
	"github.com/AlexZinkM/nilz-wallet/internal/model"
	"github.com/AlexZinkM/nilz-wallet/internal/wallet"
	"github.com/AlexZinkM/nilz-wallet/nillion"
)

const qrSize = 256

// WalletHandler serves the local wallet endpoints
type WalletHandler struct {
	store    *wallet.Store
	password PasswordFunc
	log      zerolog.Logger
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(store *wallet.Store, password PasswordFunc, log zerolog.Logger) *WalletHandler {
	return &WalletHandler{
		store:    store,
		password: password,
		log:      logger.Module(log, "handler"),
	}
}

// Import handles POST /wallets/import
// @Summary      Import a secret
// @Description  Encrypts the secret with the startup password and stores one wallet per network
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        request  body      model.ImportRequest  true  "Secret and optional name"
// @Success      200      {object}  model.ImportResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      503      {object}  model.ErrorResponse
// @Router       /wallets/import [post]
func (h *WalletHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req model.ImportRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.CodeBadRequest, err)
		return
	}
	if req.Secret == "" {
		writeError(w, http.StatusBadRequest, model.CodeBadRequest, errors.New("secret is required"))
		return
	}

	// Get password as []byte, use it, then zero it immediately
	passwordBytes, err := h.password()
	if err != nil {
		writeError(w, http.StatusBadRequest, model.CodeBadRequest, err)
		return
	}
	defer clear(passwordBytes)

	records, err := h.store.ImportSecret(r.Context(), req.Secret, passwordBytes, req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ImportResponse{
		Success: true,
		Message: "Wallet imported successfully",
		Wallets: h.views(r, records),
	})
}

// Generate handles POST /wallets/generate
// @Summary      Generate new wallet
// @Description  Generates a fresh secret and stores it like an imported one
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        request  body      model.GenerateRequest  false  "Optional name"
// @Success      200      {object}  model.ImportResponse
// @Failure      503      {object}  model.ErrorResponse
// @Router       /wallets/generate [post]
func (h *WalletHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.CodeBadRequest, err)
		return
	}

	passwordBytes, err := h.password()
	if err != nil {
		writeError(w, http.StatusBadRequest, model.CodeBadRequest, err)
		return
	}
	defer clear(passwordBytes)

	records, err := h.store.Generate(r.Context(), passwordBytes, req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ImportResponse{
		Success: true,
		Message: "Wallet generated successfully",
		Wallets: h.views(r, records),
	})
}

// List handles GET /wallets
// @Summary      List wallets
// @Description  Lists stored wallets in insertion order with the active selection
// @Tags         wallets
// @Produce      json
// @Success      200  {object}  model.ListResponse
// @Failure      503  {object}  model.ErrorResponse
// @Router       /wallets [get]
func (h *WalletHandler) List(w http.ResponseWriter, r *http.Request) {
	ws, err := h.store.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(ws))
}

// SetActive handles POST /wallets/active
// @Summary      Select the active wallet
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        request  body      model.SetActiveRequest  true  "Wallet id"
// @Success      200      {object}  model.ListResponse
// @Failure      404      {object}  model.ErrorResponse
// @Router       /wallets/active [post]
func (h *WalletHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	var req model.SetActiveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.CodeBadRequest, err)
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, model.CodeBadRequest, errors.New("id is required"))
		return
	}

	if err := h.store.SetActive(r.Context(), req.ID); err != nil {
		writeDomainError(w, err)
		return
	}
	h.List(w, r)
}

// Remove handles DELETE /wallets/{id}
// @Summary      Remove a wallet
// @Description  Removes one record. Unknown ids are ignored.
// @Tags         wallets
// @Produce      json
// @Param        id   path      string  true  "Wallet id"
// @Success      200  {object}  model.ListResponse
// @Router       /wallets/{id} [delete]
func (h *WalletHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Remove(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	h.List(w, r)
}

// QR handles GET /wallets/{id}/qr
// @Summary      Identifier QR code
// @Description  Returns the wallet identifier and a base64 PNG QR code of it
// @Tags         wallets
// @Produce      json
// @Param        id   path      string  true  "Wallet id"
// @Success      200  {object}  model.QRResponse
// @Failure      404  {object}  model.ErrorResponse
// @Router       /wallets/{id}/qr [get]
func (h *WalletHandler) QR(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	qr, err := nillion.QRCode(rec.Identifier, qrSize)
	if err != nil {
		h.log.Error().Err(err).Str("id", rec.ID).Msg("failed to render qr code")
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.QRResponse{Identifier: rec.Identifier, QR: qr})
}

func (h *WalletHandler) views(r *http.Request, records []model.WalletRecord) []model.WalletView {
	activeID := ""
	if ws, err := h.store.List(r.Context()); err == nil {
		activeID = ws.ActiveWalletID
	}
	out := make([]model.WalletView, 0, len(records))
	for _, rec := range records {
		out = append(out, model.NewWalletView(rec, activeID))
	}
	return out
}

func listResponse(ws model.WalletStorage) model.ListResponse {
	out := model.ListResponse{
		Wallets:        make([]model.WalletView, 0, len(ws.ImportedWallets)),
		ActiveWalletID: ws.ActiveWalletID,
	}
	for _, rec := range ws.ImportedWallets {
		out.Wallets = append(out.Wallets, model.NewWalletView(rec, ws.ActiveWalletID))
	}
	return out
}
