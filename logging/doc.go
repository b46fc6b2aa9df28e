// Package logging provides a minimal logging interface and adapters for
// PluginMesh.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the host, the dispatcher and plugins use for
// observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - PluginLogger with contextual helpers (plugin, component)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	host := pluginmesh.New(root, pluginmesh.WithLogger(logger))
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging
