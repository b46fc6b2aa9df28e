// Package bus provides the in-process implementation of the core.EventBus
// collaborator plus the dispatcher that routes incoming messages to
// registered Funcs.
//
// Dispatch order follows registration order. A message is offered to every
// matching non-default Func; when none matched, the registered default Funcs
// run as fallback. Permission gating happens per Func: a sender below the
// required group is skipped silently unless the Func was registered with
// PermissionRaise, in which case dispatch stops with
// core.ErrPermissionDenied.
package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/pluginmesh/core"
	"github.com/hupe1980/pluginmesh/logging"
)

// Options holds configuration overrides passed to New().
type Options struct {
	// Logger receives dispatch diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Bus is a goroutine-safe in-process event bus. Funcs are indexed in
// registration order; Register and Unregister are the only mutation points,
// matching the narrow surface plugins are allowed to touch.
type Bus struct {
	mu     sync.RWMutex
	funcs  []*core.Func
	logger logging.Logger
}

// Compile-time interface assertion.
var _ core.EventBus = (*Bus)(nil)

// New constructs an empty Bus with optional overrides.
func New(optFns ...func(o *Options)) *Bus {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Bus{logger: opts.Logger}
}

// WithLogger overrides the bus logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// Register adds f to the dispatch index.
func (b *Bus) Register(f *core.Func) error {
	if f == nil || f.Handler == nil {
		return fmt.Errorf("bus: func and handler must be non-nil")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.funcs = append(b.funcs, f)
	return nil
}

// Unregister removes f from the dispatch index. Funcs are compared by
// identity; unknown funcs are a no-op.
func (b *Bus) Unregister(f *core.Func) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, g := range b.funcs {
		if g == f {
			b.funcs = append(b.funcs[:i], b.funcs[i+1:]...)
			return nil
		}
	}
	return nil
}

// Len returns the number of indexed Funcs.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.funcs)
}

// Publish routes msg through the dispatch index. It reports whether at least
// one handler ran. Handler errors are joined and returned; a permission
// failure on a PermissionRaise Func aborts dispatch immediately.
func (b *Bus) Publish(ctx context.Context, msg *core.Message) (bool, error) {
	b.mu.RLock()
	funcs := make([]*core.Func, len(b.funcs))
	copy(funcs, b.funcs)
	b.mu.RUnlock()

	handled := false
	var errs []error
	for _, f := range funcs {
		if !f.Match(msg) {
			continue
		}
		ok, err := b.invoke(ctx, f, msg)
		if err != nil {
			if errors.Is(err, core.ErrPermissionDenied) {
				return handled, err
			}
			errs = append(errs, err)
		}
		handled = handled || ok
	}

	if !handled {
		for _, f := range funcs {
			if !f.IsDefault() {
				continue
			}
			ok, err := b.invoke(ctx, f, msg)
			if err != nil {
				if errors.Is(err, core.ErrPermissionDenied) {
					return handled, err
				}
				errs = append(errs, err)
			}
			handled = handled || ok
		}
	}

	return handled, errors.Join(errs...)
}

// invoke applies the permission gate and runs the handler. The bool result
// reports whether the handler actually ran.
func (b *Bus) invoke(ctx context.Context, f *core.Func, msg *core.Message) (bool, error) {
	if !f.Permitted(msg) {
		if f.PermissionRaise {
			return false, fmt.Errorf("%w: func %q of plugin %q requires %s, sender %q holds %s",
				core.ErrPermissionDenied, f.Name, f.Plugin, f.Permission, msg.Sender.ID, msg.Sender.Permission)
		}
		b.logger.Debug("dispatch skipped, insufficient permission",
			"func", f.Name, "plugin", f.Plugin, "sender", msg.Sender.ID)
		return false, nil
	}

	start := time.Now()
	err := f.Handler(ctx, msg)
	if err != nil {
		b.logger.Error("dispatch failed",
			"func", f.Name, "plugin", f.Plugin, "duration", time.Since(start), "error", err)
		return true, fmt.Errorf("bus: func %q of plugin %q: %w", f.Name, f.Plugin, err)
	}
	b.logger.Debug("dispatch completed",
		"func", f.Name, "plugin", f.Plugin, "duration", time.Since(start))
	return true, nil
}
