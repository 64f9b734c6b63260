package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AlexZinkM/nilz-wallet/internal/vault"
)

const (
	vaultFuncName = "vault"
	vaultCmdDes   = "Use SecretVaults with a stored wallet: register, collections, create-collection, query."
)

var walletID string
var builderName string
var collectionName string
var collectionType string
var schemaName string
var queryVars string

var vaultRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register the wallet identifier as a builder.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer session.Close()

		if err := vault.RegisterBuilder(cmd.Context(), session.Client, builderName); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "builder registered: %s\n", session.DID())
		return nil
	},
}

var vaultCollectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List the builder's collections.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer session.Close()

		cols, err := session.Client.ListCollections(cmd.Context())
		if err != nil {
			return err
		}
		if len(cols) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no collections")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTYPE\tNAME")
		for _, c := range cols {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Type, c.Name)
		}
		return tw.Flush()
	},
}

var vaultCreateCollectionCmd = &cobra.Command{
	Use:   "create-collection",
	Short: "Create a collection from one of the stock schemas.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		schemas := vault.Schemas()
		schema, ok := schemas[schemaName]
		if !ok {
			names := make([]string, 0, len(schemas))
			for n := range schemas {
				names = append(names, n)
			}
			sort.Strings(names)
			return fmt.Errorf("unknown schema %q, available: %v", schemaName, names)
		}
		name := collectionName
		if name == "" {
			name = schemaName
		}

		session, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer session.Close()

		id, err := vault.CreateCollection(cmd.Context(), session.Client, vault.CollectionType(collectionType), name, schema)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "collection created: %s\n", id)
		return nil
	},
}

var vaultQueryCmd = &cobra.Command{
	Use:   "query <query-id>",
	Short: "Run a stored query and wait for its result.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vars := map[string]any{}
		if queryVars != "" {
			if err := json.Unmarshal([]byte(queryVars), &vars); err != nil {
				return fmt.Errorf("invalid --vars: %w", err)
			}
		}

		session, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer session.Close()

		result, err := vault.RunQuery(cmd.Context(), session.Client, args[0], vars,
			a.cfg.QueryPollAttempts, a.cfg.QueryPollInterval)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(result))
		return nil
	},
}

func openSession(cmd *cobra.Command) (*vault.Session, error) {
	rec, err := a.record(cmd.Context(), walletID)
	if err != nil {
		return nil, err
	}
	return a.connect(cmd.Context(), rec)
}

var vaultCmd = &cobra.Command{
	Use:   vaultFuncName,
	Short: vaultCmdDes,
	Long:  vaultCmdDes,
}

func VaultCmd() *cobra.Command {
	vaultCmd.PersistentFlags().StringVarP(&walletID, "wallet", "w", "", "wallet id (default: active wallet)")
	vaultRegisterCmd.Flags().StringVar(&builderName, "name", "nilz", "builder name")
	vaultCreateCollectionCmd.Flags().StringVar(&collectionName, "name", "", "collection name (default: schema name)")
	vaultCreateCollectionCmd.Flags().StringVar(&collectionType, "type", string(vault.CollectionStandard), "standard or owned")
	vaultCreateCollectionCmd.Flags().StringVar(&schemaName, "schema", "contactBook", "stock schema: contactBook, personalData, healthData")
	vaultQueryCmd.Flags().StringVar(&queryVars, "vars", "", "query variables as a JSON object")

	vaultCmd.AddCommand(vaultRegisterCmd, vaultCollectionsCmd, vaultCreateCollectionCmd, vaultQueryCmd)
	return vaultCmd
}
