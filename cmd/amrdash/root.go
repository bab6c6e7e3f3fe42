package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/config"
)

var (
	configPath string // Path to the YAML config file
	logLevel   string // Overrides log.level from the config file

	cfg *config.Config
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:           "amrdash",
	Short:         "Warehouse shift simulator and metrics dashboard backend",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		level := cfg.Log.Level
		if logLevel != "" {
			level = logLevel
		}
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level: %s", level)
		}
		logrus.SetLevel(lvl)
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "amrdash.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd, setupCmd, populateCmd, cleanupCmd, statusCmd, generateCmd)
}
