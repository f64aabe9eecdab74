package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tranvictor/shadowvote/accounts"
	"github.com/tranvictor/shadowvote/ui"
)

var AccountDesc string

func importAccount(u ui.UI, registry *accounts.Registry, desc string) (accounts.AccDesc, error) {
	u.Warn("Storing a plain private key is NOT secure. It will be encrypted to a keystore.")
	key, err := u.AskSecret("Please enter or paste your private key in hex format. It will not be displayed on your terminal.")
	if err != nil {
		return accounts.AccDesc{}, err
	}
	password, err := u.AskSecret("Please enter the password to encrypt it with:")
	if err != nil {
		return accounts.AccDesc{}, err
	}
	again, err := u.AskSecret("Please enter the password again:")
	if err != nil {
		return accounts.AccDesc{}, err
	}
	if password != again {
		return accounts.AccDesc{}, fmt.Errorf("the passwords don't match. Abort")
	}

	path, addr, err := registry.StorePrivateKeyWithKeystore(key, password)
	if err != nil {
		return accounts.AccDesc{}, fmt.Errorf("private key encryption failed: %w. Abort", err)
	}
	if desc == "" {
		desc = addr
	}
	acc := accounts.AccDesc{Address: addr, Keypath: path, Desc: desc}
	if err := registry.StoreAccountRecord(acc); err != nil {
		return accounts.AccDesc{}, fmt.Errorf("couldn't store your account info: %w. Abort", err)
	}
	u.Success("Stored encrypted private key at %s.", path)
	u.Info("Use it with:\n> shadowvote --keystore %q <command>", desc)
	return acc, nil
}

func renderAccounts(u ui.UI, accs []accounts.AccDesc) {
	if len(accs) == 0 {
		u.Info("No accounts yet. Add one with:\n> shadowvote account import")
		return
	}
	rows := make([][]string, 0, len(accs))
	for _, a := range accs {
		rows = append(rows, []string{a.Address, a.Desc, a.Keypath})
	}
	u.Table([]string{"Address", "Description", "Keystore"}, rows)
}

var importAccountCmd = &cobra.Command{
	Use:   "import",
	Short: "Encrypt a private key to a keystore and remember it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := accounts.DefaultRegistry()
		if err != nil {
			return err
		}
		_, err = importAccount(appUI, registry, AccountDesc)
		return err
	},
}

var listAccountCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the accounts added locally",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := accounts.DefaultRegistry()
		if err != nil {
			return err
		}
		accs, err := registry.GetAccounts()
		if err != nil {
			return err
		}
		renderAccounts(appUI, accs)
		return nil
	},
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage the accounts that sign polls and votes",
	Long:  ``,
}

func init() {
	importAccountCmd.Flags().StringVar(&AccountDesc, "desc", "", "description to look the account up by, the address when empty")

	accountCmd.AddCommand(importAccountCmd)
	accountCmd.AddCommand(listAccountCmd)
	rootCmd.AddCommand(accountCmd)
}
