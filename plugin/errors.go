package plugin

import (
	"fmt"

	"github.com/hupe1980/pluginmesh/core"
)

// IdentityError reports a missing required identity field at construction.
type IdentityError struct {
	Field string // "name" or "version"
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("plugin identity: missing %s", e.Field)
}

// WorkspaceError reports that the resolved working directory path exists but
// is not a directory.
type WorkspaceError struct {
	Plugin string
	Path   string
}

func (e *WorkspaceError) Error() string {
	return fmt.Sprintf("plugin %s: workspace %s is not a directory", e.Plugin, e.Path)
}

// DuplicateNameError reports a name collision within one plugin's registry.
type DuplicateNameError struct {
	Plugin string
	Kind   string // "func" or "task"
	Name   string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("plugin %s: %s %q already registered", e.Plugin, e.Kind, e.Name)
}

// ValidationError reports an invalid registration, such as a non-default
// function without any filter.
type ValidationError struct {
	Plugin string
	Name   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("plugin %s: func %q: %s", e.Plugin, e.Name, e.Reason)
}

// TeardownError wraps a persistence failure during unload. Silently losing a
// failed save would corrupt durable state, so it always surfaces.
type TeardownError struct {
	Plugin string
	Err    error
}

func (e *TeardownError) Error() string {
	return fmt.Sprintf("plugin %s: teardown: %v", e.Plugin, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TeardownError) Unwrap() error { return e.Err }

// LifecycleError reports a lifecycle entry point invoked in the wrong state,
// such as a repeated Load or an Unload before Load.
type LifecycleError struct {
	Plugin string
	Op     string
	State  core.LifecycleState
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("plugin %s: cannot %s while %s", e.Plugin, e.Op, e.State)
}
