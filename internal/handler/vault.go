package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/AlexZinkM/nilz-wallet/internal/logger"
	"github.com/AlexZinkM/nilz-wallet/internal/model"
	"github.com/AlexZinkM/nilz-wallet/internal/vault"
	"github.com/AlexZinkM/nilz-wallet/internal/wallet"
)

// VaultHandler serves remote vault calls made with the active wallet
type VaultHandler struct {
	store    *wallet.Store
	factory  *vault.Factory
	password PasswordFunc
	log      zerolog.Logger
}

// NewVaultHandler creates a new VaultHandler
func NewVaultHandler(store *wallet.Store, factory *vault.Factory, password PasswordFunc, log zerolog.Logger) *VaultHandler {
	return &VaultHandler{
		store:    store,
		factory:  factory,
		password: password,
		log:      logger.Module(log, "handler"),
	}
}

// Collections handles GET /vault/collections
// @Summary      List collections
// @Description  Lists the builder collections of the active wallet
// @Tags         vault
// @Produce      json
// @Success      200  {array}   vault.Collection
// @Failure      401  {object}  model.ErrorResponse
// @Failure      409  {object}  model.ErrorResponse
// @Failure      502  {object}  model.ErrorResponse
// @Router       /vault/collections [get]
func (h *VaultHandler) Collections(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.Active(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	passwordBytes, err := h.password()
	if err != nil {
		writeError(w, http.StatusBadRequest, model.CodeBadRequest, err)
		return
	}
	defer clear(passwordBytes)

	session, err := h.factory.Connect(r.Context(), rec, passwordBytes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	defer session.Close()

	cols, err := session.Client.ListCollections(r.Context())
	if err != nil {
		h.log.Warn().Err(err).Str("id", rec.ID).Msg("list collections failed")
		status, code := classify(err)
		if code == model.CodeInternal {
			status, code = http.StatusBadGateway, model.CodeUpstream
		}
		writeError(w, status, code, err)
		return
	}
	if cols == nil {
		cols = []vault.Collection{}
	}
	writeJSON(w, http.StatusOK, cols)
}
