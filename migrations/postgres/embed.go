// Package migrations embeds SQL migration files.
package migrations

import "embed"

// PostgresFS contiene el esquema de essgate (employee, app_user, error_log).
//
//go:embed sql/*.sql
var PostgresFS embed.FS

// PostgresDir is the directory within PostgresFS where migrations live.
const PostgresDir = "sql"
