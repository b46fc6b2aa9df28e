// Package plugin implements the lifecycle and registration core shared by
// every plugin: identity and path resolution, the persistence binding with
// corruption recovery, the function and config registries, the scheduler
// binding and the lifecycle controller.
//
// Plugin authors extend the system by implementing the Hooks interface (all
// four hooks optional via NoopHooks) and constructing a Base with New. The
// lifecycle entry points Load and Unload live on Base and are not part of the
// extensible surface; the host application drives them exactly once per
// instance and a repeat call fails with *LifecycleError.
//
// Collaborators are passed in explicitly: the event bus and scheduler through
// Deps, the persistent root and debug flag through Options. Nothing in this
// package reads ambient global state.
package plugin
