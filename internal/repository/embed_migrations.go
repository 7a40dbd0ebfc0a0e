package repository

import "embed"

// MigrationFS embeds the SQL migration files applied by cmd/migrate.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
