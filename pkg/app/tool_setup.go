package app

import (
	"fmt"

	"github.com/ilkoid/poncho-chat/pkg/chat"
	"github.com/ilkoid/poncho-chat/pkg/config"
	"github.com/ilkoid/poncho-chat/pkg/tools"
	"github.com/ilkoid/poncho-chat/pkg/tools/std"
	"github.com/ilkoid/poncho-chat/pkg/utils"
	"github.com/ilkoid/poncho-chat/pkg/webclient"
)

// SetupTools регистрирует инструменты чата по секции tools из config.yaml.
//
// Rule 3: Все инструменты регистрируются через Registry.Register().
// Инструмент без секции в конфиге включён; tools.<name>.timeout
// переопределяет chat.tool_timeout.
func SetupTools(registry *tools.Registry, executor *chat.ToolExecutor, cfg *config.AppConfig, httpClient *webclient.Client) error {
	candidates := []tools.Tool{
		std.NewAddTool(),
		std.NewMultiplyTool(),
		std.NewWorldNewsTool(httpClient, cfg.News),
		std.NewNorwegianNewsTool(httpClient, cfg.News),
		std.NewWeatherTool(httpClient, cfg.Weather),
	}

	var registered []string
	for _, tool := range candidates {
		name := tool.Definition().Name
		if !cfg.ToolEnabled(name) {
			utils.Debug("Tool disabled, skipping", "tool", name)
			continue
		}
		if err := registry.Register(tool); err != nil {
			return fmt.Errorf("failed to register tool '%s': %w", name, err)
		}
		if timeout := cfg.ToolTimeout(name); timeout > 0 {
			executor.SetToolTimeout(name, timeout)
		}
		registered = append(registered, name)
	}

	utils.Info("Tools registered", "count", len(registered), "tools", registered)
	return nil
}
