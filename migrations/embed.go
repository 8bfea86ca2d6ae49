// Package migrations embeds the versioned PostgreSQL schema.
package migrations

import "embed"

// FS holds NNNNNN_name.{up,down}.sql pairs.
//
//go:embed *.sql
var FS embed.FS
