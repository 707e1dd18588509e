// Package getuser implements the user detail query. It also serves the "me" endpoint with the caller's own id.
package getuser
