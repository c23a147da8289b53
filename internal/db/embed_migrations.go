package db

import "embed"

// MigrationFS embeds the SQL migrations for events, attendance, OTP challenges, and audit logs.
// Applied by cmd/migrate through the migrate runner.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
