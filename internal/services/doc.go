// Package services implements the business logic layer between the HTTP
// handlers and the analytics engine.
//
// Services follow these architectural principles:
//
//  1. Interface-driven design for testability
//  2. Context propagation for cancellation and tracing
//  3. Dependency injection for loose coupling
//  4. Domain-focused methods that encapsulate business rules
//
// The package provides these core services:
//
//   - DatasetService: owns the in-memory dataset snapshot and serves
//     price and analytics queries against it
//   - OperationsService: runs refresh operations through the pipeline
//     manager and exposes their status
//   - HealthService: provides system health checks and runtime stats
//
// Services return sentinel errors (ErrDatasetNotLoaded, ErrNoData, ...)
// that the transport layer maps to RFC 7807 problem responses.
package services
