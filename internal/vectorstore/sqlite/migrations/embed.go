package migrations

import "embed"

// FS holds the schema applied to every index artifact.
//
//go:embed *.sql
var FS embed.FS
