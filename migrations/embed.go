// Package migrations embeds the SQL schema migrations into the binary.
package migrations

import "embed"

// FS holds every migration file in this directory.
//
//go:embed *.sql
var FS embed.FS

// Dir is the directory within FS that holds the migrations.
const Dir = "."
