// Package spies provides recording test doubles for the observability interfaces of the ledger:
// metrics, tracing, contextual logging, and a slog.Handler for plain structured logging.
//
// Every spy is safe for concurrent use, since borrow tests hammer the store from many goroutines.
package spies
