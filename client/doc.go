// Package client is a Go client for the library REST API.
//
// It keeps the access token of the last Login in memory and sends it with every request.
// Errors returned by the server are surfaced as *APIError. The client never retries.
package client
