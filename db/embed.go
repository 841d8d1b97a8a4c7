// Package db holds the SQL schema migrations, embedded so the binary and the
// tests apply exactly the same files.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
