package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/chalkboard/internal/config"
)

type rootOptions struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "chalkboard",
		Short:         "Narrated whiteboard diagrams from a topic",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.configPath != "" {
				if err := os.Setenv("CB_CONFIG_PATH", opts.configPath); err != nil {
					return err
				}
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file (default ./config/config.yaml)")

	root.AddCommand(newServeCmd(opts), newPlayCmd(opts), newTopicsCmd(opts))
	return root
}
