package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ilkoid/poncho-chat/pkg/utils"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List enabled tools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}

		_, components, shutdown, err := initialize(cfg, nil)
		if err != nil {
			utils.Close()
			return fmt.Errorf("initialization failed: %w", err)
		}
		defer shutdown()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tTIMEOUT\tDESCRIPTION")
		for _, def := range components.Registry.GetDefinitions() {
			timeout := cfg.Chat.ToolTimeout
			if t := cfg.ToolTimeout(def.Name); t > 0 {
				timeout = t
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", def.Name, timeout, utils.Truncate(def.Description, 80))
		}
		return w.Flush()
	},
}
