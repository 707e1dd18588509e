// Package borrowbook implements the Borrow Book use case.
//
// A member borrows one copy of a book for themselves. Staff may borrow on behalf of another user.
// The availability check and the decrement happen in one transaction under a row lock on the book,
// so concurrent borrows of the last copy cannot both succeed. Serialization failures are retried.
package borrowbook
