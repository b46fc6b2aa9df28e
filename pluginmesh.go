// Package pluginmesh provides a high-level façade over the plugin lifecycle
// core and its collaborators (event bus, scheduler, persistence & logging)
// enabling rapid construction of extensible event-driven applications. Most
// applications interact with this package by:
//  1. Creating a Host via New() (optionally overriding the default in-process
//     bus, cron scheduler or logger)
//  2. Constructing plugins against the host's collaborators (NewPlugin)
//  3. Attaching plugins (drives the load transition) and publishing messages
//  4. Detaching plugins on shutdown (drives the unload transition)
//
// The façade delegates dispatch to bus.Bus and timed tasks to
// schedule.CronScheduler while enforcing host-level invariants: plugin names
// are unique and each plugin goes through load and unload exactly once.
package pluginmesh

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/pluginmesh/bus"
	"github.com/hupe1980/pluginmesh/core"
	"github.com/hupe1980/pluginmesh/logging"
	"github.com/hupe1980/pluginmesh/plugin"
	"github.com/hupe1980/pluginmesh/schedule"
)

// Options configures the Host.
type Options struct {
	// Debug propagates debug mode to every plugin constructed through the
	// host: persistence writes and corruption auto-recovery are disabled.
	Debug bool

	// Bus overrides the dispatch collaborator (defaults to an in-process bus).
	Bus core.EventBus

	// Scheduler overrides the timed-task collaborator (defaults to a
	// cron-backed scheduler owned and started by the host).
	Scheduler core.Scheduler

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// WithDebug enables debug mode for all plugins constructed through the host.
func WithDebug() func(o *Options) {
	return func(o *Options) { o.Debug = true }
}

// WithBus overrides the host's event bus.
func WithBus(b core.EventBus) func(o *Options) {
	return func(o *Options) { o.Bus = b }
}

// WithScheduler overrides the host's scheduler.
func WithScheduler(s core.Scheduler) func(o *Options) {
	return func(o *Options) { o.Scheduler = s }
}

// WithLogger overrides the host's logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// Host aggregates the shared collaborators and drives plugin lifecycles. A
// failed attach leaves the plugin absent from the host, never partially
// initialized.
type Host struct {
	persistentRoot string
	debug          bool
	bus            core.EventBus
	scheduler      core.Scheduler
	ownedScheduler *schedule.CronScheduler
	logger         logging.Logger

	mu      sync.Mutex
	plugins map[string]*plugin.Base
}

// New creates a Host rooted at persistentRoot with optional overrides. When
// no scheduler is supplied the host owns a cron scheduler and starts it
// immediately.
func New(persistentRoot string, optFns ...func(o *Options)) *Host {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &Host{
		persistentRoot: persistentRoot,
		debug:          opts.Debug,
		bus:            opts.Bus,
		scheduler:      opts.Scheduler,
		logger:         opts.Logger,
		plugins:        map[string]*plugin.Base{},
	}
	if h.bus == nil {
		h.bus = bus.New(bus.WithLogger(opts.Logger))
	}
	if h.scheduler == nil {
		cs := schedule.New(schedule.WithLogger(opts.Logger))
		cs.Start()
		h.ownedScheduler = cs
		h.scheduler = cs
	}
	return h
}

// Bus returns the shared event bus.
func (h *Host) Bus() core.EventBus { return h.bus }

// Scheduler returns the shared scheduler.
func (h *Host) Scheduler() core.Scheduler { return h.scheduler }

// Deps returns the collaborator bundle for constructing plugins against this
// host.
func (h *Host) Deps() plugin.Deps {
	return plugin.Deps{Bus: h.bus, Scheduler: h.scheduler}
}

// NewPlugin constructs a plugin bound to the host's collaborators,
// persistent root, debug flag and logger. Additional options apply on top and
// may override the host defaults.
func (h *Host) NewPlugin(identity plugin.Identity, optFns ...func(o *plugin.Options)) (*plugin.Base, error) {
	base := []func(o *plugin.Options){
		plugin.WithPersistentRoot(h.persistentRoot),
		plugin.WithLogger(h.logger),
	}
	if h.debug {
		base = append(base, plugin.WithDebug())
	}
	return plugin.New(identity, h.Deps(), append(base, optFns...)...)
}

// Attach loads p and tracks it under its declared name. Duplicate names are
// rejected before the load transition runs.
func (h *Host) Attach(ctx context.Context, p *plugin.Base) error {
	h.mu.Lock()
	if _, ok := h.plugins[p.Name()]; ok {
		h.mu.Unlock()
		return fmt.Errorf("host: plugin %q already attached", p.Name())
	}
	h.mu.Unlock()

	if err := p.Load(ctx); err != nil {
		return err
	}

	h.mu.Lock()
	h.plugins[p.Name()] = p
	h.mu.Unlock()
	h.logger.Info("plugin attached", "plugin", p.Name(), "version", p.Version())
	return nil
}

// Detach unloads the named plugin and forgets it. The unload arguments are
// forwarded to the plugin's close hooks. The plugin is forgotten even when
// its teardown fails; the error still surfaces.
func (h *Host) Detach(ctx context.Context, name string, args ...any) error {
	h.mu.Lock()
	p, ok := h.plugins[name]
	delete(h.plugins, name)
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("host: plugin %q not attached", name)
	}

	err := p.Unload(ctx, args...)
	if err == nil {
		h.logger.Info("plugin detached", "plugin", name)
	}
	return err
}

// Plugin returns the attached plugin with the given name, or nil.
func (h *Host) Plugin(name string) *plugin.Base {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.plugins[name]
}

// Plugins returns the names of the attached plugins.
func (h *Host) Plugins() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, 0, len(h.plugins))
	for name := range h.plugins {
		names = append(names, name)
	}
	return names
}

// Publish routes a message through the dispatcher when the host runs the
// default in-process bus. It reports whether any handler ran.
func (h *Host) Publish(ctx context.Context, msg *core.Message) (bool, error) {
	d, ok := h.bus.(*bus.Bus)
	if !ok {
		return false, fmt.Errorf("host: custom bus does not support publishing through the host")
	}
	return d.Publish(ctx, msg)
}

// Shutdown detaches every plugin and stops the host-owned scheduler. Detach
// errors are joined and returned after all plugins were attempted.
func (h *Host) Shutdown(ctx context.Context, args ...any) error {
	var errs []error
	for _, name := range h.Plugins() {
		if err := h.Detach(ctx, name, args...); err != nil {
			errs = append(errs, err)
		}
	}
	if h.ownedScheduler != nil {
		h.ownedScheduler.Stop()
	}
	return errors.Join(errs...)
}
