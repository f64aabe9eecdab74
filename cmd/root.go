// Copyright © 2018 Victor Tran
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tranvictor/shadowvote/config"
	"github.com/tranvictor/shadowvote/ui"
)

var (
	appUI  ui.UI = ui.NewTerminalUI()
	logger       = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shadowvote",
	Short: "Create polls and vote on them, on chain or locally",
	Long: fmt.Sprintf(`Shadowvote lets you create polls, vote on them and read the results.

Polls live in a voting contract when one is configured and deployed on the
selected network. Otherwise shadowvote keeps them in memory for the lifetime
of the process, seeded with a few sample polls, so you can try everything
without a chain.

The contract is taken from --contract, the %s env var or the
config file at ~/.shadowvote/config.yaml, in that order. Transactions are
signed with the hex key in the env var named by --private-key-env (%s
by default) or with the keystore given by --keystore. The keystore password
is read from %s or prompted for.

Every network can be pointed to your own node with --node or with the
network's node env var (see "shadowvote network list").`,
		config.ContractEnv,
		config.DefaultPrivateKeyEnv,
		config.KeystorePasswordEnv,
	),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Apply(cmd.Flags().Changed); err != nil {
			return err
		}
		l, err := newLogger(config.Verbose)
		if err != nil {
			return fmt.Errorf("couldn't set up logging: %w", err)
		}
		logger = l
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&config.Network, "network", "k", config.DefaultNetwork, "network the contract is deployed on. See \"shadowvote network list\" for valid values.")
	flags.StringVar(&config.Node, "node", "", "RPC node url, replaces the network's default nodes")
	flags.StringVarP(&config.Contract, "contract", "c", "", "address of the voting contract. Polls are kept in memory when it is empty or not deployed.")
	flags.StringVar(&config.Keystore, "keystore", "", "path to the keystore file of the account that signs transactions")
	flags.StringVar(&config.PrivateKeyEnv, "private-key-env", config.DefaultPrivateKeyEnv, "env var holding the hex private key of the signing account")
	flags.BoolVarP(&config.NoWait, "no-wait", "F", false, "don't wait for transactions to be mined. New poll ids are unknown in this mode.")
	flags.DurationVar(&config.Latency, "latency", config.DefaultLatency, "simulated latency of the in-memory store")
	flags.BoolVarP(&config.Verbose, "verbose", "v", false, "log debug information to stderr")
	flags.StringVar(&config.ConfigFile, "config", "", "config file (default ~/.shadowvote/config.yaml)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		appUI.Error("%s", err)
		os.Exit(1)
	}
}
