// Package api implements the HTTP delivery layer: request/response DTOs,
// handlers for the auth and listing endpoints, and the mapping from internal
// errors to HTTP status codes and safe client messages. Handlers delegate all
// business logic to the service layer and never touch stores directly.
package api
