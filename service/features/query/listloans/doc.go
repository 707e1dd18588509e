// Package listloans implements the loan list query, filterable by borrower and status, newest first.
// Every authenticated user may list all loans.
package listloans
