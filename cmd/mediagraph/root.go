package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hdelmont/mediagraph"
	"github.com/hdelmont/mediagraph/config"
	"github.com/hdelmont/mediagraph/nodes"
)

// cliContext carries the loaded configuration and wired dependencies into
// subcommands.
type cliContext struct {
	cfg    *config.Config
	logger *zap.Logger
	deps   *nodes.Deps
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		verbose    bool
		cli        cliContext
	)

	root := &cobra.Command{
		Use:           "mediagraph",
		Short:         "Generative media pipeline tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger, err := newLogger(verbose)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			cli.cfg = cfg
			cli.logger = logger
			cli.deps = nodes.NewDeps(cfg, logger)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if cli.logger != nil {
				cli.logger.Sync() //nolint:errcheck
			}
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newStitchCommand(&cli),
		newDownloadCommand(&cli),
		newMusicPromptCommand(&cli),
		newNodesCommand(&cli),
		newVersionCommand(),
	)
	return root
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mediagraph %s\n", mediagraph.Version)
		},
	}
}
