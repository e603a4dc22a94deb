// Package migrations embeds the lab orders schema so the server binary can
// migrate tenant schemas without a migrations directory on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
