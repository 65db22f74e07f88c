// Package timeouts defines shared timeout constants for the HTTP surface.
// Centralizing these values keeps the server and its tests in agreement.
package timeouts

import "time"

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second
