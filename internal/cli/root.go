// Package cli defines the kollab command tree.
package cli

import (
	"kollab-api/internal/config"
	"kollab-api/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	configDir string
}

// NewRootCmd creates the top-level "kollab" command.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "kollab",
		Short:         "Workflow and task API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configDir, "config-dir", ".", "directory holding the .env file")

	root.AddCommand(
		newServeCmd(opts),
		newDispatchCmd(opts),
	)
	return root
}

// setup loads configuration and builds the process logger.
func (o *rootOptions) setup() (config.Config, *zap.SugaredLogger, error) {
	cfg, err := config.Load(o.configDir)
	if err != nil {
		return cfg, nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}
