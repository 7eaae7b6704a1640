// Package main provides refdata, the reference dataset and character generation tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hyperborea/internal/config"
	"github.com/cory-johannsen/hyperborea/internal/observability"
)

var (
	configPath string
	envFile    string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "refdata",
	Short: "Hyperborea reference dataset tool",
	Long: `refdata imports and verifies the Hyperborea reference dataset and rolls
characters against it. The dataset backend is chosen by dataset.source.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if logger, err = observability.NewLogger(cfg.Logging); err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file (empty = defaults and environment)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before configuration")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(rollCmd)
	rootCmd.AddCommand(modifiersCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
