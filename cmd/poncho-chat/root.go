package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ilkoid/poncho-chat/pkg/app"
	"github.com/ilkoid/poncho-chat/pkg/config"
	"github.com/ilkoid/poncho-chat/pkg/events"
	"github.com/ilkoid/poncho-chat/pkg/utils"
)

var (
	configPath  string
	debug       bool
	colorScheme string
	version     = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "poncho-chat",
	Short: "Chat with an LLM that can call tools",
	Long: `Poncho Chat is a terminal chat client. The model can add and multiply
numbers, read world and Norwegian news headlines and look up the weather
before it answers. After every answer three follow-up prompts are suggested.

Quick Start:
  poncho-chat                          # Interactive chat (TUI)
  poncho-chat ask "What is 2+2?"       # One turn, answer on stdout
  poncho-chat tools                    # List enabled tools`,
	Version:      version,
	SilenceUsage: true,
	RunE:         runChat,
}

// Execute запускает корневую команду.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (default: $PONCHO_CHAT_CONFIG, ./config.yaml, binary dir)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write DEBUG lines to the log and show tool calls")
	rootCmd.PersistentFlags().StringVar(&colorScheme, "colors", "default", "TUI color scheme: default, dark, light")
	rootCmd.AddCommand(chatCmd, askCmd, toolsCmd)
}

// bootstrap загружает конфиг и открывает лог.
func bootstrap() (*config.AppConfig, error) {
	cfg, cfgPath, err := app.InitializeConfig(&app.DefaultConfigPathFinder{ConfigFlag: configPath})
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.App.Debug = true
	}

	logPath, err := utils.InitLogger(cfg.App.LogDir, "poncho-chat")
	if err != nil {
		log.Printf("Warning: failed to init logger: %v", err)
	}
	utils.SetDebug(cfg.App.Debug)

	utils.Info("Application started", "version", version, "config", cfgPath, "log", logPath)
	logKeysInfo(cfg)
	return cfg, nil
}

// initialize собирает компоненты с graceful shutdown.
func initialize(cfg *config.AppConfig, emitter events.Emitter) (context.Context, *app.Components, func(), error) {
	var components *app.Components
	ctx, shutdown := utils.SetupGracefulShutdownWithContext(func() {
		if components != nil {
			components.Close()
		}
	})

	components, err := app.Initialize(ctx, cfg, app.Options{Emitter: emitter})
	if err != nil {
		shutdown()
		return nil, nil, nil, err
	}
	return ctx, components, shutdown, nil
}

// logKeysInfo логирует какие API ключи заданы (маскированно).
func logKeysInfo(cfg *config.AppConfig) {
	for alias, def := range cfg.Models.Definitions {
		utils.Info("Model configured",
			"alias", alias,
			"provider", def.Provider,
			"model", def.ModelName,
			"api_key", maskKey(def.APIKey))
	}
}

func maskKey(key string) string {
	switch {
	case key == "":
		return "<not set>"
	case len(key) <= 8:
		return "****"
	default:
		return key[:4] + "****" + key[len(key)-4:]
	}
}
