package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tranvictor/shadowvote/service"
	"github.com/tranvictor/shadowvote/ui"
)

func runWhoami(ctx context.Context, u ui.UI, svc *service.Service) error {
	addr, err := svc.Identity(ctx)
	if err != nil {
		return err
	}
	u.KeyValue([][2]string{
		{"Address", addr},
		{"Backend", svc.Mode().String()},
	})
	if svc.IdentityIsPlaceholder() {
		u.Warn("No account is connected, this is a random placeholder address for this run only.")
	}
	return nil
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the address polls and votes are made from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd.Context(), nil)
		if err != nil {
			return err
		}
		return runWhoami(cmd.Context(), appUI, svc)
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
