// Package schemas provides embedded SQL migration files.
package schemas

import "embed"

// Migrations contains the migration files of every supported dialect,
// one directory per dialect.
//
//go:embed migrations/sqlite/*.sql migrations/mysql/*.sql migrations/postgres/*.sql
var Migrations embed.FS
