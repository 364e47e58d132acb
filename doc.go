// Package backend provides the Crest API server.

// This package contains the main application entry points. The actual API
// implementation is organized into subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/models: Data models and database schemas
// - internal/auth: Authentication and token validation
// - internal/engagement: Like toggles and engagement counter recounts
// - internal/feed: Home feed assembly and caching
// - internal/trending: Trending score and ranking
// - internal/notify: Notification fan-out and retention
// - internal/realtime: WebSocket server for live updates
// - internal/database: Database connection and migrations
// - internal/cache: Redis connection
// - internal/middleware: HTTP middleware (auth, logging, metrics)
// - internal/seed: Fake data generation for development

// See the individual package documentation for detailed API reference.
package backend
