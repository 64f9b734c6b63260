package api

import (
	"net/http"

	"github.com/AlexZinkM/nilz-wallet/internal/handler"

	_ "github.com/AlexZinkM/nilz-wallet/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRouter sets up router with handlers
func SetupRouter(wallets *handler.WalletHandler, vaults *handler.VaultHandler) http.Handler {
	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("GET /swagger/", httpSwagger.WrapHandler)

	// Wallet endpoints
	mux.HandleFunc("GET /wallets", wallets.List)
	mux.HandleFunc("POST /wallets/import", wallets.Import)
	mux.HandleFunc("POST /wallets/generate", wallets.Generate)
	mux.HandleFunc("POST /wallets/active", wallets.SetActive)
	mux.HandleFunc("DELETE /wallets/{id}", wallets.Remove)
	mux.HandleFunc("GET /wallets/{id}/qr", wallets.QR)

	// Vault endpoints
	mux.HandleFunc("GET /vault/collections", vaults.Collections)

	return mux
}
