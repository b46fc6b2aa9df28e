// Package store implements the persistence binding used by plugins: a keyed
// in-memory tree loaded from and saved to a single per-plugin data file.
//
// Supported save formats are json (default) and yaml. Load and save failures
// are reported through distinguished error kinds (ErrUnknownFormat,
// ErrMissingFile, LoadError, SaveError) so callers can decide between
// recovery and surfacing. The corruption-recovery policy itself (self-healing
// a broken file into a fresh empty store outside debug mode) lives with the
// lifecycle controller in the plugin package, not here.
package store
