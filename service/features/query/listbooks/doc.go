// Package listbooks implements the catalogue query: all books, newest first.
//
// The list tolerates replication lag, so it is read with eventual consistency and may be served by a replica.
package listbooks
