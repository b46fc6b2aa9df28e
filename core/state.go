package core

// LifecycleState tracks where a plugin instance is in its lifecycle. Each
// instance moves through the states at most once:
//
//	StateUninitialized → StateLoading → StateLoaded → StateUnloading → StateUnloaded
//
// The transient Loading/Unloading states mark in-progress transitions so a
// concurrent repeat call can be rejected deterministically.
type LifecycleState int

const (
	// StateUninitialized is the state of a freshly constructed plugin.
	StateUninitialized LifecycleState = iota
	// StateLoading marks an in-progress load transition.
	StateLoading
	// StateLoaded means the plugin completed its load transition.
	StateLoaded
	// StateUnloading marks an in-progress unload transition.
	StateUnloading
	// StateUnloaded means the plugin completed its unload transition.
	StateUnloaded
)

// String returns the string representation of the lifecycle state.
func (s LifecycleState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateUnloading:
		return "unloading"
	case StateUnloaded:
		return "unloaded"
	default:
		return "unknown"
	}
}
