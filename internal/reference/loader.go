// Package reference provides read-only, allow-list validated access to the
// Hyperborea reference dataset.
package reference

import (
	"context"
	"io/fs"
	"os"

	"github.com/cory-johannsen/hyperborea/content"
	"github.com/cory-johannsen/hyperborea/internal/game/ruleset"
)

// Loader reads a complete dataset from a backing store.
type Loader interface {
	// Load returns every reference table. The result need not be validated.
	Load(ctx context.Context) (*ruleset.Dataset, error)
}

// FSLoader loads YAML tables from a filesystem.
type FSLoader struct {
	FS fs.FS
}

// NewEmbeddedLoader returns a Loader over the tables compiled into the binary.
func NewEmbeddedLoader() FSLoader {
	return FSLoader{FS: content.FS}
}

// NewDirLoader returns a Loader over YAML tables in dir.
//
// Precondition: dir must contain the standard table files.
func NewDirLoader(dir string) FSLoader {
	return FSLoader{FS: os.DirFS(dir)}
}

// Load implements Loader.
func (l FSLoader) Load(ctx context.Context) (*ruleset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ruleset.LoadDataset(l.FS)
}
