// Package cli implements the cargo-debstatus command-line interface.
//
// The root command audits the current cargo workspace: it loads `cargo
// metadata`, classifies every crate against the Debian archive and prints
// the annotated dependency tree. Subcommands manage the status cache.
//
// # Logging
//
// Diagnostics go to stderr through charmbracelet/log. --verbose switches to
// debug level (one line per database query), --quiet to errors only. The
// tree itself is written to stdout.
//
// # Configuration
//
// Flags override values from $XDG_CONFIG_HOME/cargo-debstatus/config.toml,
// see [Config].
package cli

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/debstatus/pkg/buildinfo"
	"github.com/matzehuels/debstatus/pkg/cache"
)

// appName is the binary name used for directories and display.
const appName = cache.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogError = log.ErrorLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Stdout io.Writer
	Stderr io.Writer
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Stdout: os.Stdout,
		Stderr: w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   appName + " [flags]",
		Short: "Show the Debian packaging status of a crate's dependencies",
		Long: `cargo-debstatus prints the dependency tree of a cargo workspace and marks
every crate with its packaging status in Debian unstable and the NEW queue.`,
		Version:       buildinfo.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(c.attachLogger(cmd.Context(), opts.verbose, opts.quiet))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.audit(cmd, opts)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	opts.register(root)

	root.AddCommand(c.cacheCommand(opts))
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// Args strips the subcommand name cargo passes when the binary is invoked
// as `cargo debstatus`.
func Args(args []string) []string {
	if len(args) > 0 && args[0] == "debstatus" {
		return slices.Clone(args[1:])
	}
	return args
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), appName+" "+buildinfo.Version)
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}
