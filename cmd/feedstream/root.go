package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/feedstream/internal/config"
	"github.com/aretw0/feedstream/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "feedstream",
	Short: "feedstream flattens paginated content feeds into renderable lists",
	Long: `feedstream renders a content tree of clusters, cards and pagination tokens
as a flat list, paging, dismissing and restoring sessions along the way.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
}

// setup loads the config and builds the logger. Flags win over the file.
func setup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if cmd.Flags().Lookup("store") != nil && cmd.Flags().Changed("store") {
		cfg.Store.Driver, _ = cmd.Flags().GetString("store")
		if err := cfg.Validate(); err != nil {
			return config.Config{}, nil, err
		}
	}
	if cmd.Flags().Lookup("latency") != nil && cmd.Flags().Changed("latency") {
		cfg.FetchLatency, _ = cmd.Flags().GetDuration("latency")
	}

	logger := logging.NewWithWriter(cmd.ErrOrStderr(), logging.ParseLevel(cfg.LogLevel))
	return cfg, logger, nil
}
