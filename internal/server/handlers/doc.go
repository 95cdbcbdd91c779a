// Package handlers provides the HTTP handlers of the node API.
//
// Infrastructure handlers (health, readiness, version) are plain functions.
// The API handlers are grouped by resource in handler structs that hold the services they use.
package handlers
