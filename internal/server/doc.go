// Package server provides the HTTP server of the rein node.
//
// the server is configured through environment variables
// (see internal/config/config.go for details)
//
// Handlers are in internal/server/handlers, middleware in internal/server/middleware.
package server
