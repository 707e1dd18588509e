// Package listusers implements the user directory query, ordered by id.
package listusers
