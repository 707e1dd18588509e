// Package config provides the runtime configuration of the library service:
// settings read from LMS_* environment variables, factory functions for PostgreSQL connections
// using the three supported drivers (pgx.Pool, sql.DB, sqlx.DB), the structured logger,
// and the OpenTelemetry providers.
//
// This package is part of the shell (infrastructure) layer.
package config
