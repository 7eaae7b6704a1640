package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hyperborea/internal/reference"
	"github.com/cory-johannsen/hyperborea/internal/storage/postgres"
)

var importDir string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Write the YAML dataset into PostgreSQL",
	Long: `Import validates the embedded dataset (or the YAML tables in --dir) and
replaces the PostgreSQL reference tables with it in a single transaction.
Run the migrate tool first.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importDir, "dir", "", "directory of YAML tables (empty = embedded dataset)")
}

func runImport(cmd *cobra.Command, args []string) error {
	start := time.Now()
	ctx := cmd.Context()

	var loader reference.Loader = reference.NewEmbeddedLoader()
	if importDir != "" {
		loader = reference.NewDirLoader(importDir)
	}
	d, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.NewImporter(pool.DB(), logger).Import(ctx, d); err != nil {
		return err
	}
	logger.Info("import complete", zap.Duration("elapsed", time.Since(start)))
	return nil
}
