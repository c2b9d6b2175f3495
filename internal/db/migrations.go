package db

import "embed"

// Migrations holds the schema for the postgres storage backend.
//
//go:embed migrations/*.sql
var Migrations embed.FS
