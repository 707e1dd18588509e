// Package getbook implements the book detail query.
package getbook
