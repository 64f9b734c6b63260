package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AlexZinkM/nilz-wallet/internal/crypto"
	"github.com/AlexZinkM/nilz-wallet/internal/model"
	"github.com/AlexZinkM/nilz-wallet/internal/storage"
	"github.com/AlexZinkM/nilz-wallet/internal/vault"
	"github.com/AlexZinkM/nilz-wallet/internal/wallet"
	"github.com/AlexZinkM/nilz-wallet/nillion"
)

// PasswordFunc returns a copy of the wallet password. Caller clears it.
type PasswordFunc func() ([]byte, error)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, model.ErrorResponse{Error: err.Error(), Code: code})
}

// writeDomainError maps domain errors to status codes
func writeDomainError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, nillion.ErrInvalidSecretFormat):
		return http.StatusBadRequest, model.CodeInvalidSecret
	case errors.Is(err, crypto.ErrDecryptionFailed):
		return http.StatusUnauthorized, model.CodeDecryptionFailed
	case errors.Is(err, wallet.ErrRecordNotFound):
		return http.StatusNotFound, model.CodeRecordNotFound
	case errors.Is(err, wallet.ErrNoActiveWallet):
		return http.StatusConflict, model.CodeNoActiveWallet
	case storage.IsUnavailable(err):
		return http.StatusServiceUnavailable, model.CodeStorageUnavailable
	case errors.Is(err, vault.ErrMalformedResponse),
		errors.Is(err, vault.ErrNotFound),
		errors.Is(err, vault.ErrAlreadyExists):
		return http.StatusBadGateway, model.CodeUpstream
	}
	return http.StatusInternalServerError, model.CodeInternal
}

// decodeBody decodes a JSON request body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}
