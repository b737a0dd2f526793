// Package services implements the read side of the report server.
//
// ArtifactService loads the tables the pipeline wrote under data/analytics
// and answers the queries the HTTP handlers expose. HealthService reports
// liveness and which artifacts are present. Handlers stay thin: they parse
// the request, call a service and render the result.
package services
