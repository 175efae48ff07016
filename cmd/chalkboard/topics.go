package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/chalkboard/internal/client"
	"github.com/yungbote/chalkboard/internal/fallback"
)

func newTopicsCmd(root *rootOptions) *cobra.Command {
	var server string
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "List topics with built-in diagrams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			topics := fallback.Topics()
			if server != "" {
				c, err := client.New(client.Options{BaseURL: server})
				if err != nil {
					return err
				}
				if topics, err = c.Topics(cmd.Context()); err != nil {
					return err
				}
			}
			for _, t := range topics {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "ask a running chalkboard server instead")
	return cmd
}
