// Package addbook implements the Add Book use case for staff.
// All copies of a new book are on the shelf unless an availability is given.
package addbook
