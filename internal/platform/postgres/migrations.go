package postgres

import "embed"

// MigrationsFS embeds the goose SQL migrations so the server binary can
// bring the schema up to date at startup without a separate migrations
// directory on disk.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS
