package main

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/chalkboard/internal/app"
	"github.com/yungbote/chalkboard/internal/platform/shutdown"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the generation API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			ctx, stop := shutdown.NotifyContext(cmd.Context(), a.Log)
			defer stop()
			return a.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")
	return cmd
}
