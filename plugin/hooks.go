package plugin

import "context"

// Hooks is the extensible surface a plugin author implements. All hooks are
// optional; embed NoopHooks and override what you need.
//
// Ordering guarantees: during Load, Init runs off the calling goroutine and
// completes before OnLoad. During Unload, every Func has already been
// unregistered from the event bus and all scheduled tasks cancelled before
// Close runs; Close completes before OnClose; persistence happens last.
// Arguments passed to Unload are forwarded to Close and OnClose.
type Hooks interface {
	// Init is the synchronous init hook, run off the calling goroutine
	// during Load.
	Init() error

	// OnLoad is the asynchronous init hook, run after Init completes.
	OnLoad(ctx context.Context) error

	// Close is the synchronous close hook, run off the calling goroutine
	// during Unload.
	Close(args ...any) error

	// OnClose is the asynchronous close hook, run after Close completes.
	OnClose(ctx context.Context, args ...any) error
}

// NoopHooks implements Hooks with no-ops. Embed it to opt out of hooks you do
// not need.
type NoopHooks struct{}

// Init is a no-op.
func (NoopHooks) Init() error { return nil }

// OnLoad is a no-op.
func (NoopHooks) OnLoad(context.Context) error { return nil }

// Close is a no-op.
func (NoopHooks) Close(...any) error { return nil }

// OnClose is a no-op.
func (NoopHooks) OnClose(context.Context, ...any) error { return nil }
