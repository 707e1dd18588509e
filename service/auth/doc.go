// Package auth issues and verifies the bearer tokens of the REST API and hashes passwords.
//
// Login returns a short-lived access token and a longer-lived refresh token, both HS256-signed JWTs.
// The claims carry the user id, username, and staff flag, so authenticated requests need no user lookup.
package auth
