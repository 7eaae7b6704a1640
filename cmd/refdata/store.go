package main

import (
	"context"
	"fmt"

	"github.com/cory-johannsen/hyperborea/internal/config"
	"github.com/cory-johannsen/hyperborea/internal/reference"
	"github.com/cory-johannsen/hyperborea/internal/storage/postgres"
)

// selectLoader returns the Loader for cfg.Dataset.Source and a release func
// that closes any pool it opened.
func selectLoader(ctx context.Context, cfg config.Config) (reference.Loader, func(), error) {
	switch cfg.Dataset.Source {
	case config.SourceEmbedded:
		return reference.NewEmbeddedLoader(), func() {}, nil
	case config.SourceDirectory:
		return reference.NewDirLoader(cfg.Dataset.Dir), func() {}, nil
	case config.SourcePostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewReferenceRepository(pool.DB()), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown dataset source %q", cfg.Dataset.Source)
	}
}

// openStore opens the reference store through the configured backend.
func openStore(ctx context.Context) (*reference.Store, error) {
	loader, release, err := selectLoader(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer release()
	return reference.Open(ctx, loader, logger)
}
