// Package postgreswrapper provides test utilities for running the PostgreSQL store against different database adapters.
//
// The adapter is chosen with the ADAPTER_TYPE environment variable (pgx, sql or sqlx, default pgx), so the same
// integration suite runs against every driver. Tests connect to LMS_TEST_DSN when it is set, otherwise a
// PostgreSQL container is started once per test binary with testcontainers.
//
// Usage:
//
//	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
//	defer wrapper.Close()
//
//	postgreswrapper.CleanUp(t, wrapper)
//	store := wrapper.Store()
package postgreswrapper
