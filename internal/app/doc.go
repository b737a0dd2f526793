// Package app wires the report server: it builds the chi router over the
// artifact services, owns the http.Server and shuts both the server and the
// telemetry providers down cleanly.
//
// Initialization order is config and paths, logging, OpenTelemetry, services,
// router, server. The caller owns signal handling and passes a context that
// is cancelled on interrupt.
package app
