package config

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/ledger/postgresengine"
)

// OpenStore connects with the configured adapter, optionally to a replica as well, and builds the Store.
// The returned close function releases all connections.
func OpenStore(ctx context.Context, cfg Config, options ...postgresengine.Option) (*postgresengine.Store, func(), error) {
	options = append([]postgresengine.Option{postgresengine.WithLoanPeriod(cfg.LoanPeriod())}, options...)

	switch cfg.DBAdapter {
	case AdapterSQL:
		return openSQLStore(ctx, cfg, options)
	case AdapterSQLX:
		return openSQLXStore(ctx, cfg, options)
	case AdapterPGX:
		return openPGXStore(ctx, cfg, options)
	default:
		return nil, nil, cfg.Validate()
	}
}

func openPGXStore(ctx context.Context, cfg Config, options []postgresengine.Option) (*postgresengine.Store, func(), error) {
	primary, err := NewPostgresPGXPool(ctx, cfg.DBDSN)
	if err != nil {
		return nil, nil, err
	}

	if cfg.DBReplicaDSN == "" {
		store, storeErr := postgresengine.NewStoreFromPGXPool(primary, options...)
		if storeErr != nil {
			primary.Close()
			return nil, nil, storeErr
		}

		return store, primary.Close, nil
	}

	replica, err := NewPostgresPGXPool(ctx, cfg.DBReplicaDSN)
	if err != nil {
		primary.Close()
		return nil, nil, err
	}

	closeAll := func() {
		replica.Close()
		primary.Close()
	}

	store, err := postgresengine.NewStoreFromPGXPoolAndReplica(primary, replica, options...)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	return store, closeAll, nil
}

func openSQLStore(ctx context.Context, cfg Config, options []postgresengine.Option) (*postgresengine.Store, func(), error) {
	primary, err := NewPostgresSQLDB(ctx, cfg.DBDSN)
	if err != nil {
		return nil, nil, err
	}

	if cfg.DBReplicaDSN == "" {
		store, storeErr := postgresengine.NewStoreFromSQLDB(primary, options...)
		if storeErr != nil {
			_ = primary.Close()
			return nil, nil, storeErr
		}

		return store, func() { _ = primary.Close() }, nil
	}

	replica, err := NewPostgresSQLDB(ctx, cfg.DBReplicaDSN)
	if err != nil {
		_ = primary.Close()
		return nil, nil, err
	}

	closeAll := func() {
		_ = replica.Close()
		_ = primary.Close()
	}

	store, err := postgresengine.NewStoreFromSQLDBAndReplica(primary, replica, options...)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	return store, closeAll, nil
}

func openSQLXStore(ctx context.Context, cfg Config, options []postgresengine.Option) (*postgresengine.Store, func(), error) {
	primary, err := NewPostgresSQLXDB(ctx, cfg.DBDSN)
	if err != nil {
		return nil, nil, err
	}

	if cfg.DBReplicaDSN == "" {
		store, storeErr := postgresengine.NewStoreFromSQLX(primary, options...)
		if storeErr != nil {
			_ = primary.Close()
			return nil, nil, storeErr
		}

		return store, func() { _ = primary.Close() }, nil
	}

	replica, err := NewPostgresSQLXDB(ctx, cfg.DBReplicaDSN)
	if err != nil {
		_ = primary.Close()
		return nil, nil, err
	}

	closeAll := func() {
		_ = replica.Close()
		_ = primary.Close()
	}

	store, err := postgresengine.NewStoreFromSQLXAndReplica(primary, replica, options...)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	return store, closeAll, nil
}
