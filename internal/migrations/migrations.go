// Package migrations embeds the SQL schema migrations applied by cmd/migrate
// and by the server when database.auto_migrate is enabled.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
