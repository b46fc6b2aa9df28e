// Package core provides the foundational domain types and interfaces used by
// PluginMesh. It defines the core abstractions for:
//
//   - Messages (incoming units of work with sender identity and permission level)
//   - Funcs (named, permission-scoped, filter-gated callables owned by plugins)
//   - Confs (declared configuration keys with defaults and converters)
//   - LifecycleState (the plugin lifecycle state machine)
//   - Pluggable collaborators: EventBus for dispatch and Scheduler for timed tasks
//
// The package intentionally keeps implementation concerns (persistence,
// concrete dispatchers, concrete schedulers) out of scope, exposing small
// interfaces to enable custom backends and extensions. All exported
// identifiers include concise documentation to aid discoverability and
// external consumption.
package core
