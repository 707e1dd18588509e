// Package updatebook implements the Update Book use case for staff.
//
// The catalogue fields are replaced as given. Availability is never taken from the request:
// a quantity change shifts it by the same delta under the book row lock, so the copies on loan stay accounted for.
package updatebook
