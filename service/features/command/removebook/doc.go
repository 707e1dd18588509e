// Package removebook implements the Remove Book use case for staff. The book's loans are deleted with it.
package removebook
