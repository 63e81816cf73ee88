package cmd

import (
	"fmt"
	"os"

	"github.com/kasuganosora/weaponpaints/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cfgPath string

// RootCmd runs serve when no subcommand is given.
var RootCmd = &cobra.Command{
	Use:   "weaponpaints",
	Short: "Knife, glove and weapon skin sync service",
	Long: `weaponpaints keeps per-player knife, glove and weapon skin selections
in MySQL (or SQLite) and hydrates them into per-slot caches when players connect.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		if l, logErr := zap.NewDevelopment(); logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config/config.yaml", "path to the YAML config file")
}

// setup loads config and builds the logger shared by every subcommand.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	logger, err := newLogger(cfg.Server.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, logger, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
