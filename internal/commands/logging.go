package commands

import (
	"strings"

	"github.com/goliatone/go-guide/internal/logging"
	"github.com/goliatone/go-guide/pkg/interfaces"
)

const commandsModule = "guide.commands"

// CommandLogger names the logger for a command group, e.g. "site" yields
// guide.commands.site. An empty group logs under guide.commands itself.
func CommandLogger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	module := commandsModule
	fields := map[string]any{"component": "command"}
	if group = strings.Trim(strings.TrimSpace(group), "."); group != "" {
		module += "." + group
		fields["command_group"] = group
	}
	return logging.WithFields(logging.ModuleLogger(provider, module), fields)
}
