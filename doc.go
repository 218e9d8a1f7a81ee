// Package backend provides the ClipTide API server.

// This package contains the main application entry point. The actual API
// documentation is organized into subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/models: Data models and database schemas
// - internal/auth: Authentication services (passwords, JWT, OTP, OAuth)
// - internal/community: Community and membership lifecycle
// - internal/lists: Watch history, watch later, and playlist contents
// - internal/storage: File storage (S3) operations
// - internal/database: Database connection and migrations
// - internal/email: Email service integration
// - internal/middleware: HTTP middleware (auth guards, rate limiting, etc.)
// - internal/metrics: Prometheus instrumentation
// - internal/telemetry: OpenTelemetry tracing setup

// See the individual package documentation for detailed API reference.
package backend
