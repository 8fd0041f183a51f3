// Package cmd defines the CLI commands for the dado-stream executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pharaohanjay-gif/dado-stream/internal/config"
	"github.com/pharaohanjay-gif/dado-stream/internal/logging"
)

var (
	cfgFile string

	// cfg and logger are initialized by the root PersistentPreRunE and
	// shared by subcommands.
	cfg    config.Config
	logger *zap.Logger
)

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dado-stream",
		Short: "Discovers video pages and resolves them to playable media URLs.",
		Long: `dado-stream crawls a content site's categories and posts, then resolves
each post's candidate links to directly playable media URLs using a tiered
strategy: fast metadata extraction first, live browser network capture as
the fallback. Results are written as a JSON document.`,

		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err = logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.AddCommand(newScrapeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
