// Package migrations embeds the SQL migrations for the client's local
// SQLite database, applied with goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
