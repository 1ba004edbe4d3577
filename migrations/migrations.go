// Package migrations embeds the SQL migration files in the binary so the
// service has no filesystem dependency at deploy time.
package migrations

import "embed"

// FS holds the contents of this directory, applied in lexical filename
// order by internal/database.Client.Migrate.
//
//go:embed *.sql
var FS embed.FS
