package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formstate/internal/dashboard"
	"github.com/goliatone/go-formstate/internal/server"
	"github.com/goliatone/go-formstate/pkg/confirm"
)

var (
	serveAddr string
	serveSeed bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the editing pages over HTTP",
	Long: `Starts the HTTP API. Clients open an editing session per product or
collection, send field changes, submit, and watch the session over a
websocket to follow the save button.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "load fixtures into a sqlite store before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, closeStore, err := openStore(ctx, cfg.Store, serveSeed)
	if err != nil {
		return err
	}
	defer closeStore()

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := server.New(store,
		server.WithLogger(logger),
		server.WithPageOptions(
			dashboard.WithButtonOptions(confirm.WithResetDelay(cfg.Button.ResetDelay)),
		),
	)
	return srv.Run(ctx, addr, cfg.Server.ShutdownTimeout)
}
