package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nilz",
	Short: "nilz keeps Nillion identities encrypted on this machine",
	Long: `nilz imports or generates Nillion secrets, stores them encrypted with a
password, and talks to SecretVaults with the active wallet.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return a.open()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		a.close()
	},
}

func init() {
	rootCmd.AddCommand(WalletCmd())
	rootCmd.AddCommand(VaultCmd())
	rootCmd.AddCommand(ServeCmd())
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
