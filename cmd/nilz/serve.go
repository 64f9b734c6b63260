package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AlexZinkM/nilz-wallet/internal/api"
	"github.com/AlexZinkM/nilz-wallet/internal/config"
	"github.com/AlexZinkM/nilz-wallet/internal/handler"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local wallet API on localhost.",
	Long:  `Prompts for the wallet password once and serves the wallet API and swagger UI on 127.0.0.1:$PORT.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.PromptForPassword(); err != nil {
			return err
		}

		router := api.SetupRouter(
			handler.NewWalletHandler(a.store, config.GetPasswordBytes, a.log),
			handler.NewVaultHandler(a.store, a.factory, config.GetPasswordBytes, a.log),
		)
		srv := &http.Server{
			Addr:              "127.0.0.1:" + config.GetPort(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			a.log.Info().Str("addr", srv.Addr).Msg("serving wallet api")
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		a.log.Info().Msg("server stopped")
		return nil
	},
}

func ServeCmd() *cobra.Command {
	return serveCmd
}
