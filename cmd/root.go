package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/Mohsinsiddi/journal/internal/config"
	"github.com/Mohsinsiddi/journal/internal/providers"
	"github.com/Mohsinsiddi/journal/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/journal/cmd.Version=1.2.3" .
var Version = "0.1.0"

// dial opens the node transport. Tests replace it with an in-memory node.
var dial = func(ctx context.Context, url string, logger zerolog.Logger) (*providers.Provider, error) {
	return providers.Dial(ctx, url, logger)
}

// app is the state shared by every command of one invocation.
type app struct {
	cfgDir  string
	network string
	verbose bool

	cfg    *config.Config
	net    config.ResolvedNetwork
	logger zerolog.Logger
}

// NewRootCmd builds the journal command tree.
func NewRootCmd() *cobra.Command {
	a := &app{logger: zerolog.Nop()}

	// JOURNAL_CONFIG_DIR overrides the default of the --config flag.
	if envDir := os.Getenv("JOURNAL_CONFIG_DIR"); envDir != "" {
		a.cfgDir = envDir
	}

	root := &cobra.Command{
		Use:   "journal",
		Short: "Submit and review articles on the Journal contract",
		Long: ui.Banner() + `

journal talks to the Journal and ReviewToken contracts through an
Ethereum node with unlocked accounts.

  Check the account balance, submit articles, count and read them, and
  call, send or deploy any bundled contract on the configured networks.

Networks come from the config directory (default ~/.journal) and mirror
the truffle project: live, morden, staging and development.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.cfgDir, "config", a.cfgDir, "config directory (default: ~/.journal)")
	root.PersistentFlags().StringVarP(&a.network, "network", "n", "", "network name from the config (default: default_network)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newBalanceCmd(a),
		newArticleCmd(a),
		newContractCmd(a),
		newNetworkCmd(a),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), ui.Err(err.Error()))
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	if a.verbose {
		level = zerolog.DebugLevel
	}
	a.logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: "15:04:05"}).
		Level(level).
		With().Timestamp().Logger()

	a.net, err = cfg.Network(a.network)
	if err != nil {
		return fmt.Errorf("%w, run `journal network list` to see them", err)
	}
	a.logger.Debug().
		Str("network", a.net.Name).
		Str("rpc", a.net.RPCURL()).
		Str("config", cfg.Dir()).
		Msg("configuration loaded")
	return nil
}
