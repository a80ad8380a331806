package migrations

import "embed"

// FS contains embedded SQLite migrations for spec storage.
//
//go:embed *.sql
var FS embed.FS
