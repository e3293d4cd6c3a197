// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// Services receive their dependencies through constructor injection and
// depend only on domain entities and store interfaces, never on concrete
// infrastructure. Transactional boundaries are applied here when an operation
// spans multiple repositories, and store errors are translated into
// application-level errors the API layer can map to HTTP status codes.
package service
