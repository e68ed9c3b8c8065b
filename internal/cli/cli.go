// Package cli implements the scholapi command-line interface.
//
// Each provider operation has a command. Results are written to stdout as
// indented JSON carrying the provider, the record or records, and the
// call's elapsed milliseconds; logs go to the writer given to New.
//
// # Commands
//
//   - providers: list providers and their capabilities
//   - title, lookup, fulltext: run one provider operation
//   - repec handle|meta|lookup: the RePEc two-step lookup
//   - config: print the loaded credential keys with secrets masked
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/helixir/scholinfra-service/internal/config"
	"github.com/helixir/scholinfra-service/internal/federation"
	"github.com/helixir/scholinfra-service/internal/observability"
)

const appName = "scholapi"

// CLI holds shared state for all commands.
type CLI struct {
	Logger zerolog.Logger

	logOut     io.Writer
	configPath string
	verbose    bool
	options    []federation.Option

	cfg      *config.Config
	registry *federation.Registry
}

// New creates a CLI logging to logOut. opts are passed to the registry
// built before each command runs.
func New(logOut io.Writer, opts ...federation.Option) *CLI {
	return &CLI{
		Logger:  zerolog.Nop(),
		logOut:  logOut,
		options: opts,
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               appName,
		Short:             "Query scholarly infrastructure providers",
		Long:              `scholapi looks up publication metadata at EuropePMC, OpenAIRE, Semantic Scholar, Unpaywall, dissemin, Dimensions and RePEc, and reports how long each call took.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to rc.cfg (default: search ./rc.cfg, ./config/rc.cfg, /etc/scholapi/rc.cfg)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging, including parsed provider documents")

	root.AddCommand(c.providersCommand())
	root.AddCommand(c.titleCommand())
	root.AddCommand(c.lookupCommand())
	root.AddCommand(c.fullTextCommand())
	root.AddCommand(c.repecCommand())
	root.AddCommand(c.configCommand())

	return root
}

// setup loads configuration and builds the logger and registry.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logCfg := observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     "console",
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: "15:04:05.00",
	}
	if c.verbose {
		logCfg.Level = "debug"
	}
	c.Logger = observability.NewLoggerTo(c.logOut, logCfg).With().Str("component", appName).Logger()

	c.cfg = cfg
	c.registry = federation.New(cfg, c.Logger, c.options...)

	c.Logger.Debug().
		Str("config_file", cfg.File).
		Str("command", cmd.Name()).
		Msg("cli initialized")
	return nil
}

// printJSON writes v to the command's stdout as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
