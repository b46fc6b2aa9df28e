package plugin

import (
	"fmt"
	"regexp"

	"github.com/hupe1980/pluginmesh/core"
)

// funcOptions collects the optional pieces of a function registration.
type funcOptions struct {
	filter     core.Filter
	rawPattern string
	raise      bool
}

// FuncOption customizes a function registration.
type FuncOption func(o *funcOptions)

// WithFilter gates the function behind a predicate over the incoming message.
func WithFilter(f core.Filter) FuncOption {
	return func(o *funcOptions) { o.filter = f }
}

// WithRawFilter gates the function behind a pattern matched against the raw
// message text. The pattern is compiled as a regular expression at
// registration time.
func WithRawFilter(pattern string) FuncOption {
	return func(o *funcOptions) { o.rawPattern = pattern }
}

// WithPermissionRaise surfaces a failed permission check as an error to the
// dispatcher instead of silently skipping the function.
func WithPermissionRaise() FuncOption {
	return func(o *funcOptions) { o.raise = true }
}

// RegisterUserFunc registers a USER-permission function. At least one of
// WithFilter/WithRawFilter is required.
func (b *Base) RegisterUserFunc(name string, handler core.Handler, optFns ...FuncOption) error {
	return b.registerFunc(name, handler, core.PermissionUser, optFns...)
}

// RegisterAdminFunc registers an ADMIN-permission function. At least one of
// WithFilter/WithRawFilter is required.
func (b *Base) RegisterAdminFunc(name string, handler core.Handler, optFns ...FuncOption) error {
	return b.registerFunc(name, handler, core.PermissionAdmin, optFns...)
}

// RegisterDefaultFunc registers the reserved fallback function invoked by the
// dispatcher when no other registered function matched a message. It carries
// no filter requirement.
func (b *Base) RegisterDefaultFunc(handler core.Handler, permission core.PermissionGroup) error {
	return b.registerFunc(core.DefaultFuncName, handler, permission)
}

// registerFunc is the single registration primitive. Centralizing the
// uniqueness and filter-presence checks here keeps the invariants enforceable
// regardless of which convenience entry point was used.
func (b *Base) registerFunc(name string, handler core.Handler, permission core.PermissionGroup, optFns ...FuncOption) error {
	if handler == nil {
		return &ValidationError{Plugin: b.identity.Name, Name: name, Reason: "handler must be non-nil"}
	}

	var opts funcOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if name != core.DefaultFuncName && opts.filter == nil && opts.rawPattern == "" {
		return &ValidationError{Plugin: b.identity.Name, Name: name, Reason: "a non-default function needs at least one filter"}
	}

	var rawFilter *regexp.Regexp
	if opts.rawPattern != "" {
		re, err := regexp.Compile(opts.rawPattern)
		if err != nil {
			return &ValidationError{Plugin: b.identity.Name, Name: name, Reason: fmt.Sprintf("invalid raw filter: %v", err)}
		}
		rawFilter = re
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, f := range b.funcs {
		if f.Name == name {
			return &DuplicateNameError{Plugin: b.identity.Name, Kind: "func", Name: name}
		}
	}

	f := &core.Func{
		Name:            name,
		Plugin:          b.identity.Name,
		Handler:         handler,
		Filter:          opts.filter,
		RawFilter:       rawFilter,
		Permission:      permission,
		PermissionRaise: opts.raise,
	}
	if err := b.bus.Register(f); err != nil {
		return fmt.Errorf("plugin %s: register func %q: %w", b.identity.Name, name, err)
	}
	b.funcs = append(b.funcs, f)
	return nil
}

// UnregisterAll removes every registered Func from both the local table and
// the event bus's dispatch index. Safe to call repeatedly; a second call is a
// no-op.
func (b *Base) UnregisterAll() {
	b.mu.Lock()
	funcs := b.funcs
	b.funcs = nil
	b.mu.Unlock()

	for _, f := range funcs {
		if err := b.bus.Unregister(f); err != nil {
			b.logger.Warn("failed to unregister func",
				"plugin", b.identity.Name, "func", f.Name, "error", err)
		}
	}
}

// Funcs returns a snapshot of the registered functions.
func (b *Base) Funcs() []*core.Func {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*core.Func, len(b.funcs))
	copy(out, b.funcs)
	return out
}
