package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tranvictor/shadowvote/metrics"
	"github.com/tranvictor/shadowvote/server"
)

var (
	ListenAddr string
	WriteRPS   float64
	WriteBurst int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the polls over a JSON HTTP API",
	Long: `Serve the polls over HTTP:

	GET  /polls              all polls
	GET  /polls/{id}         one poll
	POST /polls              {"question": "...", "options": ["...", "..."]}
	POST /polls/{id}/vote    {"choice": 0}
	GET  /identity           the address polls and votes are made from
	GET  /healthz            liveness and the backend in use
	GET  /metrics            prometheus metrics

Poll creation and votes are rate limited per client ip.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m := metrics.New()
		svc, err := newService(cmd.Context(), m)
		if err != nil {
			return err
		}
		modeNotice(appUI, svc)
		srv := server.New(svc, server.Options{
			Logger:     logger,
			Registry:   m.Registry(),
			WriteRPS:   WriteRPS,
			WriteBurst: WriteBurst,
		})
		appUI.Info("Serving %s polls on %s", svc.Mode(), ListenAddr)
		return srv.ListenAndServe(cmd.Context(), ListenAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&ListenAddr, "listen", ":8080", "address to listen on")
	serveCmd.Flags().Float64Var(&WriteRPS, "write-rps", 2, "poll creations and votes per second allowed per client, 0 disables the limit")
	serveCmd.Flags().IntVar(&WriteBurst, "write-burst", 10, "burst of writes allowed per client")
	rootCmd.AddCommand(serveCmd)
}
