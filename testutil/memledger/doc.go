// Package memledger provides an in-memory Store with the same method set and error contract as
// postgresengine.Store. Unit tests of the feature slices and of the HTTP API use it instead of a database.
package memledger
