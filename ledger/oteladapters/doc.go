// Package oteladapters implements the ledger observability interfaces on top of OpenTelemetry.
//
// The service wires them into the postgresengine.Store and into the command and query handlers
// when LMS_OBSERVABILITY_ENABLED is set.
package oteladapters
