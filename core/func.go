package core

import (
	"fmt"
	"regexp"
)

// DefaultFuncName is the reserved name under which a plugin registers its
// fallback handler. The dispatcher invokes the fallback only when no other
// registered Func of any plugin matched the message.
const DefaultFuncName = "default"

// ErrPermissionDenied is returned by the dispatcher when a sender lacks the
// permission a matched Func requires and the Func was registered with
// PermissionRaise set. Without PermissionRaise the Func is silently skipped.
var ErrPermissionDenied = fmt.Errorf("permission denied")

// Func is a named, permission-scoped, filter-gated callable registered by a
// plugin. Instances are created through the plugin function registry which
// enforces name uniqueness and filter presence; the dispatcher treats them as
// read-only.
type Func struct {
	// Name is unique among the Funcs of the owning plugin.
	Name string
	// Plugin is the declared name of the owning plugin.
	Plugin string
	// Handler processes messages this Func matched.
	Handler Handler
	// Filter is an optional predicate consulted during matching.
	Filter Filter
	// RawFilter is an optional pattern matched against Message.Raw.
	RawFilter *regexp.Regexp
	// Permission is the group a sender must hold to trigger this Func.
	Permission PermissionGroup
	// PermissionRaise surfaces a permission failure as an error instead of
	// silently skipping the Func.
	PermissionRaise bool
}

// IsDefault reports whether this Func is the reserved fallback entry.
func (f *Func) IsDefault() bool { return f.Name == DefaultFuncName }

// Match reports whether the message passes this Func's filters. A default
// Func never matches; the dispatcher invokes it explicitly as a fallback.
// A Func carrying both filters matches when either one passes.
func (f *Func) Match(msg *Message) bool {
	if f.IsDefault() {
		return false
	}
	if f.RawFilter != nil && f.RawFilter.MatchString(msg.Raw) {
		return true
	}
	if f.Filter != nil && f.Filter(msg) {
		return true
	}
	return false
}

// Permitted reports whether the sender of msg may trigger this Func.
func (f *Func) Permitted(msg *Message) bool {
	return msg.Sender.Permission.Allows(f.Permission)
}
