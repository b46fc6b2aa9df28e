package core

import "context"

// EventBus is the shared dispatch collaborator. Implementations index
// registered Funcs and route incoming messages to them; plugins only ever
// touch the bus through explicit Register/Unregister calls made by their
// function registry.
type EventBus interface {
	// Register adds a Func to the dispatch index.
	Register(f *Func) error

	// Unregister removes a previously registered Func from the dispatch
	// index. Unregistering a Func that is not present is a no-op.
	Unregister(f *Func) error
}

// TaskHandle identifies a scheduled task for later cancellation.
type TaskHandle string

// Scheduler is the shared timed-callback collaborator. Specs are
// implementation defined; the cron-backed implementation in the schedule
// package accepts standard cron expressions and plain durations.
type Scheduler interface {
	// Schedule registers task to run according to spec and returns a handle
	// for cancellation.
	Schedule(spec string, task func()) (TaskHandle, error)

	// Cancel stops the task identified by handle. Cancelling an unknown
	// handle is a no-op.
	Cancel(handle TaskHandle) error
}

// Handler processes a dispatched message. Handlers run inside the dispatcher;
// a returned error is surfaced to the dispatch caller.
type Handler func(ctx context.Context, msg *Message) error

// Filter decides whether a Func wants to handle a message.
type Filter func(msg *Message) bool
