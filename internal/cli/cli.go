// Package cli implements the pub command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lljwdbklb/pub/pkg/buildinfo"
	"github.com/lljwdbklb/pub/pkg/source"
	pathsrc "github.com/lljwdbklb/pub/pkg/source/path"
)

// appName is the application name used for display and suggested commands.
const appName = "pub"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "pub resolves and links local package dependencies",
		Long: `pub reads a package's pubspec.toml, resolves the path dependencies it
declares (including transitive ones), links each resolved package into the
workspace, and records the result in pubspec.lock.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.getCommand())
	root.AddCommand(c.depsCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRegistry returns the dependency sources this build carries.
func newRegistry() *source.Registry {
	return source.NewRegistry(pathsrc.New())
}
