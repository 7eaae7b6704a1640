// Package migrations bundles the reference schema migrations.
package migrations

import "embed"

// FS holds the golang-migrate SQL files.
//
//go:embed *.sql
var FS embed.FS

// ReferenceSchemaUp is the file that creates the reference schema.
const ReferenceSchemaUp = "000001_reference_schema.up.sql"
