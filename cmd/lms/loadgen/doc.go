// Package loadgen drives a running server with a configurable rate of borrow and return requests.
//
// Every request is sent by one of several logged-in members, so the server sees concurrent
// borrows of the same books. Rejections the domain expects under contention (no copy available,
// loan already returned) are counted apart from real errors.
package loadgen
