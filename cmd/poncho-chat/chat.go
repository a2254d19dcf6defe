package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ilkoid/poncho-chat/internal/ui"
	"github.com/ilkoid/poncho-chat/pkg/events"
	"github.com/ilkoid/poncho-chat/pkg/tui"
	"github.com/ilkoid/poncho-chat/pkg/utils"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat (default)",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}

	emitter := events.NewChanEmitter(100)
	ctx, components, shutdown, err := initialize(cfg, emitter)
	if err != nil {
		utils.Close()
		return fmt.Errorf("initialization failed: %w", err)
	}
	// Emitter закрывается последним: async подсказки ещё могут писать в него
	defer emitter.Close()
	defer shutdown()

	model := ui.InitialModel(ctx, components.Session, emitter.Subscribe(), ui.Options{
		ModelName:          cfg.Models.AnswerModel,
		InitialSuggestions: components.Board.Slots(),
		Slots:              components.Board,
		Colors:             tui.GetColorScheme(colorScheme),
		Debug:              cfg.App.Debug,
	})

	utils.Info("Starting TUI")
	if err := ui.Run(model); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
