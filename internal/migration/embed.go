package migration

import "embed"

// Migrations ship inside the binary so a deploy cannot run against a schema
// it does not carry.
const migrationsDir = "migrations"

//go:embed migrations/*.up.sql
var embeddedMigrations embed.FS
