// Package setpassword implements the operator use case of resetting a password by username.
// It has no actor: only the command line calls it, with direct database access.
package setpassword
