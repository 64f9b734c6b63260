package main

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AlexZinkM/nilz-wallet/internal/common"
	"github.com/AlexZinkM/nilz-wallet/internal/config"
	"github.com/AlexZinkM/nilz-wallet/internal/model"
	"github.com/AlexZinkM/nilz-wallet/nillion"
)

const (
	walletFuncName = "wallet"
	walletCmdDes   = "Manage locally stored wallets: import, generate, list, use, remove, show."
)

var walletName string
var qrOut string

var walletImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a hex secret as one wallet per network.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, err := config.ReadPassword("Enter secret (64 hex characters): ")
		if err != nil {
			return err
		}
		defer clear(secret)
		if err := nillion.ValidateSecret(string(secret)); err != nil {
			return err
		}

		password, err := newPassword()
		if err != nil {
			return err
		}
		defer clear(password)

		records, err := a.store.ImportSecret(cmd.Context(), string(secret), password, walletName)
		if err != nil {
			return err
		}
		printRecords(cmd.OutOrStdout(), records, "")
		return nil
	},
}

var walletGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a fresh secret and store it like an imported one.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := newPassword()
		if err != nil {
			return err
		}
		defer clear(password)

		records, err := a.store.Generate(cmd.Context(), password, walletName)
		if err != nil {
			return err
		}
		printRecords(cmd.OutOrStdout(), records, "")
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored wallets. The active one is marked with *.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := a.store.List(cmd.Context())
		if err != nil {
			return err
		}
		printRecords(cmd.OutOrStdout(), ws.ImportedWallets, ws.ActiveWalletID)
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use <id>",
	Short: "Select the active wallet.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := a.store.SetActive(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "active wallet: %s\n", args[0])
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a stored wallet.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := a.store.Remove(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed: %s\n", args[0])
		return nil
	},
}

var walletShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a wallet's identifier and network details.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := a.store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		netCfg, err := nillion.NetworkConfig(rec.Network)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "id:         %s\n", rec.ID)
		fmt.Fprintf(out, "name:       %s\n", rec.Name)
		fmt.Fprintf(out, "identifier: %s\n", rec.Identifier)
		fmt.Fprintf(out, "network:    %s (%s)\n", netCfg.Name, netCfg.ChainID)
		fmt.Fprintf(out, "explorer:   %s\n", netCfg.ExplorerURL)
		fmt.Fprintf(out, "created:    %s\n", common.FormatMillis(rec.CreatedAt))
		fmt.Fprintf(out, "last used:  %s\n", common.FormatMillis(rec.LastUsed))

		if qrOut == "" {
			return nil
		}
		return writeQR(rec.Identifier, qrOut)
	},
}

func walletFlags() {
	walletImportCmd.Flags().StringVarP(&walletName, "name", "n", "", "wallet display name")
	walletGenerateCmd.Flags().StringVarP(&walletName, "name", "n", "", "wallet display name")
	walletShowCmd.Flags().StringVar(&qrOut, "qr", "", "write a PNG QR code of the identifier to this file")
}

var walletCmd = &cobra.Command{
	Use:   walletFuncName,
	Short: walletCmdDes,
	Long:  walletCmdDes,
}

func WalletCmd() *cobra.Command {
	walletFlags()
	walletCmd.AddCommand(walletImportCmd, walletGenerateCmd, walletListCmd, walletUseCmd, walletRemoveCmd, walletShowCmd)
	return walletCmd
}

// newPassword prompts twice and returns the password if both entries match
func newPassword() ([]byte, error) {
	first, err := config.ReadPassword("Enter wallet password: ")
	if err != nil {
		return nil, err
	}
	second, err := config.ReadPassword("Repeat wallet password: ")
	if err != nil {
		clear(first)
		return nil, err
	}
	defer clear(second)

	if !bytes.Equal(first, second) {
		clear(first)
		return nil, errors.New("passwords do not match")
	}
	return first, nil
}

func printRecords(w io.Writer, records []model.WalletRecord, activeID string) {
	if len(records) == 0 {
		fmt.Fprintln(w, "no wallets")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tNETWORK\tNAME\tIDENTIFIER\tLAST USED")
	for _, r := range records {
		mark := ""
		if r.ID == activeID {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			mark, r.ID, r.Network, r.Name, common.Truncate(r.Identifier, 24), common.FormatMillis(r.LastUsed))
	}
	tw.Flush()
}

func writeQR(did, path string) error {
	encoded, err := nillion.QRCode(did, 256)
	if err != nil {
		return err
	}
	png, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("failed to decode qr code: %w", err)
	}
	return os.WriteFile(path, png, 0644)
}
