package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ilkoid/poncho-chat/pkg/app"
	"github.com/ilkoid/poncho-chat/pkg/utils"
)

var noSuggestions bool

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Run one turn and print the answer",
	Long: `Run one turn: the answer is printed to stdout, then the command waits
for the follow-up suggestions and prints them too.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}

		ctx, components, shutdown, err := initialize(cfg, nil)
		if err != nil {
			utils.Close()
			return fmt.Errorf("initialization failed: %w", err)
		}
		defer shutdown()

		result, err := app.Execute(ctx, components, strings.Join(args, " "))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, result.Response)
		if noSuggestions {
			return nil
		}

		components.Fanout.Wait()
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Suggestions:")
		for i, s := range components.Board.Slots() {
			fmt.Fprintf(out, "  %d. %s\n", i+1, s)
		}
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVar(&noSuggestions, "no-suggestions", false, "do not wait for follow-up suggestions")
}
