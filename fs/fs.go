// Package appfs embeds the files shipped with the binaries.
package appfs

import "embed"

// FS holds the SQL migrations, one directory per dialect (see MigrationsDir).
//
//go:embed migrations
var FS embed.FS

// MigrationsDir returns the migrations directory of a goose dialect.
func MigrationsDir(dialect string) string {
	return "migrations/" + dialect
}
