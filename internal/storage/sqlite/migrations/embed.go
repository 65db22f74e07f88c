// Package migrations embeds the schema files for the sqlite game store.
package migrations

import "embed"

// FS holds the embedded .sql migration files.
//
//go:embed *.sql
var FS embed.FS
