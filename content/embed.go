// Package content bundles the read-only Hyperborea reference tables.
package content

import "embed"

// FS holds every reference table as a YAML file at the root of the filesystem.
//
//go:embed *.yaml
var FS embed.FS
