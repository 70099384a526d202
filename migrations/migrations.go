// Package migrations embeds the PostgreSQL schema migrations.
package migrations

import "embed"

// FS holds the numbered up/down SQL files in golang-migrate naming.
//
//go:embed *.sql
var FS embed.FS
