// Package http implements the HTTP handlers of the report server.
//
// Handlers are thin: they parse query and path parameters, call a service
// from internal/services and render JSON with chi/render. Failures are
// answered with the APIError envelope from internal/errors:
//
//	{"success": false, "error": {"status_code": 404, "error_code": "ARTIFACT_NOT_FOUND", ...}}
//
// A missing artifact means the pipeline has not run yet and maps to 404;
// bad query parameters map to 400.
package http
