// Package cli implements the nervi command-line interface.
//
// # Commands
//
//   - plan: Compute and print the layout of a stair or spiral stair
//   - render: Evaluate a design script and write the tessellated STL
//   - graph: Write the scene graph of a design script as DOT or SVG
//   - materials: List the material catalog
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context; the engine logs every generated plan at
// debug level.
//
// # Configuration
//
// --config points at a TOML file overriding the stair, handrail, spiral and
// render defaults and extending the material catalog.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Dante-U/nervi/pkg/config"
)

// appName is the application name used for display.
const appName = "nervi"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), cfg: config.Default()}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "nervi generates parametric stairs, handrails and spiral stairs",
		Long:         `nervi lays out straight, L- and U-shaped stairs, spiral stairs and handrails from a few building dimensions, and renders design scripts to STL meshes.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "TOML configuration file")

	root.AddCommand(c.planCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.materialsCommand())

	return root
}

// loadConfig reads --config, keeping the defaults when it is unset.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path, "materials", len(cfg.Materials))
	}
	return nil
}
