package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/AntonStoeckl/library-loans-go/ledger/postgresengine"
	"github.com/AntonStoeckl/library-loans-go/service/shared/shell/config"
)

const (
	envAdapterType = "ADAPTER_TYPE"
	envTestDSN     = "LMS_TEST_DSN"

	replicaDatabaseSuffix = "_replica"
)

// Wrapper abstracts over the database handles of the different adapters.
type Wrapper interface {
	Store() *postgresengine.Store
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing
type PGXPoolWrapper struct {
	pool    *pgxpool.Pool
	replica *pgxpool.Pool
	store   *postgresengine.Store
}

func (w *PGXPoolWrapper) Store() *postgresengine.Store {
	return w.store
}

func (w *PGXPoolWrapper) Close() {
	if w.replica != nil {
		w.replica.Close()
	}
	w.pool.Close()
}

// SQLDBWrapper wraps sql.DB-based testing
type SQLDBWrapper struct {
	db      *sql.DB
	replica *sql.DB
	store   *postgresengine.Store
}

func (w *SQLDBWrapper) Store() *postgresengine.Store {
	return w.store
}

func (w *SQLDBWrapper) Close() {
	if w.replica != nil {
		_ = w.replica.Close()
	}
	_ = w.db.Close()
}

// SQLXWrapper wraps sqlx.DB-based testing
type SQLXWrapper struct {
	db      *sqlx.DB
	replica *sqlx.DB
	store   *postgresengine.Store
}

func (w *SQLXWrapper) Store() *postgresengine.Store {
	return w.store
}

func (w *SQLXWrapper) Close() {
	if w.replica != nil {
		_ = w.replica.Close()
	}
	_ = w.db.Close()
}

var (
	containerOnce sync.Once
	containerDSN  string
	containerErr  error
)

// TestDSN returns LMS_TEST_DSN, or the DSN of a shared PostgreSQL container started on first use.
func TestDSN(t testing.TB) string {
	t.Helper()

	if dsn := os.Getenv(envTestDSN); dsn != "" {
		return dsn
	}

	containerOnce.Do(func() {
		ctx := context.Background()

		container, err := postgres.Run(ctx,
			"postgres:17-alpine",
			postgres.WithDatabase("library"),
			postgres.WithUsername("test"),
			postgres.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		if err != nil {
			containerErr = err
			return
		}

		containerDSN, containerErr = container.ConnectionString(ctx, "sslmode=disable")
	})

	require.NoError(t, containerErr, "error starting the postgres container")

	return containerDSN
}

// CreateWrapperWithTestConfig connects with the adapter named in ADAPTER_TYPE and applies the schema.
func CreateWrapperWithTestConfig(t testing.TB, options ...postgresengine.Option) Wrapper {
	t.Helper()

	return createWrapper(t, TestDSN(t), "", options)
}

// CreateWrapperWithReplica also connects to a separate replica database. It has the schema but no data.
// Eventual consistency reads therefore do not see writes made through the wrapper.
func CreateWrapperWithReplica(t testing.TB, options ...postgresengine.Option) Wrapper {
	t.Helper()

	dsn := TestDSN(t)
	replicaDSN := ensureReplicaDatabase(t, dsn)

	return createWrapper(t, dsn, replicaDSN, options)
}

func createWrapper(t testing.TB, dsn, replicaDSN string, options []postgresengine.Option) Wrapper {
	t.Helper()
	ctx := context.Background()

	var wrapper Wrapper

	switch adapter := adapterFromEnv(); adapter {
	case config.AdapterPGX:
		pool, err := config.NewPostgresPGXPool(ctx, dsn)
		require.NoError(t, err, "error connecting to DB pool in test setup")
		w := &PGXPoolWrapper{pool: pool}

		if replicaDSN == "" {
			w.store, err = postgresengine.NewStoreFromPGXPool(pool, options...)
		} else {
			w.replica, err = config.NewPostgresPGXPool(ctx, replicaDSN)
			require.NoError(t, err, "error connecting to replica pool in test setup")
			w.store, err = postgresengine.NewStoreFromPGXPoolAndReplica(pool, w.replica, options...)
		}
		require.NoError(t, err, "error creating the store")
		wrapper = w

	case config.AdapterSQL:
		db, err := config.NewPostgresSQLDB(ctx, dsn)
		require.NoError(t, err, "error connecting to DB in test setup")
		w := &SQLDBWrapper{db: db}

		if replicaDSN == "" {
			w.store, err = postgresengine.NewStoreFromSQLDB(db, options...)
		} else {
			w.replica, err = config.NewPostgresSQLDB(ctx, replicaDSN)
			require.NoError(t, err, "error connecting to replica DB in test setup")
			w.store, err = postgresengine.NewStoreFromSQLDBAndReplica(db, w.replica, options...)
		}
		require.NoError(t, err, "error creating the store")
		wrapper = w

	case config.AdapterSQLX:
		db, err := config.NewPostgresSQLXDB(ctx, dsn)
		require.NoError(t, err, "error connecting to DB in test setup")
		w := &SQLXWrapper{db: db}

		if replicaDSN == "" {
			w.store, err = postgresengine.NewStoreFromSQLX(db, options...)
		} else {
			w.replica, err = config.NewPostgresSQLXDB(ctx, replicaDSN)
			require.NoError(t, err, "error connecting to replica DB in test setup")
			w.store, err = postgresengine.NewStoreFromSQLXAndReplica(db, w.replica, options...)
		}
		require.NoError(t, err, "error creating the store")
		wrapper = w

	default:
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapter))
	}

	require.NoError(t, wrapper.Store().Migrate(ctx), "error applying the schema")

	return wrapper
}

// CleanUp empties all tables of the primary database and resets the id sequences.
func CleanUp(t testing.TB, wrapper Wrapper) {
	t.Helper()

	const truncate = "TRUNCATE TABLE loans, books, users RESTART IDENTITY CASCADE"

	var err error

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		_, err = w.pool.Exec(context.Background(), truncate)
	case *SQLDBWrapper:
		_, err = w.db.Exec(truncate)
	case *SQLXWrapper:
		_, err = w.db.Exec(truncate)
	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	require.NoError(t, err, "error cleaning up the tables")
}

// ensureReplicaDatabase creates the replica database next to the primary one and returns its DSN.
func ensureReplicaDatabase(t testing.TB, dsn string) string {
	t.Helper()
	ctx := context.Background()

	parsed, err := url.Parse(dsn)
	require.NoError(t, err, "error parsing the test DSN")

	name := strings.TrimPrefix(parsed.Path, "/") + replicaDatabaseSuffix
	parsed.Path = "/" + name

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err, "error connecting to DB pool in test setup")
	defer pool.Close()

	var exists bool
	err = pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", name).Scan(&exists)
	require.NoError(t, err, "error looking up the replica database")

	if !exists {
		_, err = pool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %q", name))
		require.NoError(t, err, "error creating the replica database")
	}

	replicaDSN := parsed.String()

	replicaPool, err := config.NewPostgresPGXPool(ctx, replicaDSN)
	require.NoError(t, err, "error connecting to the replica database")
	defer replicaPool.Close()

	replicaStore, err := postgresengine.NewStoreFromPGXPool(replicaPool)
	require.NoError(t, err, "error creating the replica store")
	require.NoError(t, replicaStore.Migrate(ctx), "error applying the schema to the replica")

	return replicaDSN
}

func adapterFromEnv() string {
	switch adapter := strings.ToLower(os.Getenv(envAdapterType)); adapter {
	case "", config.AdapterPGX, "pgx.pool", "pgxpool":
		return config.AdapterPGX
	case config.AdapterSQL, "sql.db", "sqldb":
		return config.AdapterSQL
	case "sqlx.db":
		return config.AdapterSQLX
	default:
		return adapter
	}
}
