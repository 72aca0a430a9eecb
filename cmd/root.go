// Package cmd holds the gamewish command line.
package cmd

import (
	"fmt"
	"os"

	"gamewish/internal/config"
	"gamewish/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runtime is filled in before any subcommand runs.
type runtime struct {
	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	var envFile string
	rt := &runtime{}

	root := &cobra.Command{
		Use:           "gamewish",
		Short:         "gamewish is the game wishlist API server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			log, err := logger.New(logger.Config{
				Level:      cfg.LogLevel,
				OutputPath: cfg.LogFile,
				MaxBackups: 5,
				MaxAge:     30,
				Compress:   true,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			rt.cfg = cfg
			rt.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt.log != nil {
				_ = rt.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file to load")

	root.AddCommand(
		newServeCmd(rt),
		newMigrateCmd(rt),
		newSeedCmd(rt),
	)
	return root
}

// Execute executes the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
