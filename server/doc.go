// Package server provides the HTTP surface of the consultation service,
// using Gin with HTTP/2 and h2c support.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - Recovery: panic recovery with structured logging
//   - Logging: request/response logging with duration tracking
//   - CORS: cross-origin resource sharing configuration
//   - RequestID: request ID generation and propagation
//   - BodySize: request body size limits
//
// # Endpoints
//
// Built-in endpoints (server/endpoint):
//
//   - POST /api/v1/consultations: the consultation pipeline
//   - /health: health check aggregation
//   - /info: service and build information
//   - /metrics: runtime metrics
package server
