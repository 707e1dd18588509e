// Package httpapi exposes the library ledger as a JSON REST API with gin.
//
// Routes live under /api/ with trailing slashes. Requests authenticate with an
// "Authorization: Bearer <access token>" header. Errors are rendered as {"detail": "..."}:
// validation 400, authentication 401, permission 403, not found 404, everything else 500.
//
// Handlers only translate between HTTP and the feature slices in service/features,
// which may or may not be wrapped with observability.
package httpapi
