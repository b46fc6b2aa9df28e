package plugin

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/hupe1980/pluginmesh/core"
	"github.com/hupe1980/pluginmesh/logging"
	"github.com/hupe1980/pluginmesh/store"
)

// Deps bundles the shared collaborators a plugin needs. Both are required;
// the plugin references them, it does not own them.
type Deps struct {
	// Bus is the shared event bus Funcs are registered with.
	Bus core.EventBus
	// Scheduler is the shared timed-task scheduler.
	Scheduler core.Scheduler
}

// Options holds construction overrides. All fields are optional with safe
// defaults; unknown concepts cannot be injected because the structure is
// statically declared.
type Options struct {
	// Debug disables persistence writes and corruption auto-recovery,
	// favoring inspection over durability.
	Debug bool
	// Logger receives lifecycle diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
	// PersistentRoot is the directory all plugin working directories live
	// under. Defaults to "data".
	PersistentRoot string
	// SourceDir is the plugin's source directory; its base name keys the
	// working directory. Defaults to the current directory.
	SourceDir string
	// SourceFile optionally records the plugin's main source file.
	SourceFile string
	// Hooks is the author-provided hook implementation. Defaults to
	// NoopHooks.
	Hooks Hooks
	// Extra carries additional named attributes readable via Base.Attr.
	Extra map[string]any
}

// WithDebug enables debug mode.
func WithDebug() func(o *Options) {
	return func(o *Options) { o.Debug = true }
}

// WithLogger overrides the plugin logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithPersistentRoot sets the directory plugin working directories live under.
func WithPersistentRoot(root string) func(o *Options) {
	return func(o *Options) { o.PersistentRoot = root }
}

// WithSourceDir sets the plugin's source directory.
func WithSourceDir(dir string) func(o *Options) {
	return func(o *Options) { o.SourceDir = dir }
}

// WithSourceFile records the plugin's main source file.
func WithSourceFile(file string) func(o *Options) {
	return func(o *Options) { o.SourceFile = file }
}

// WithHooks sets the author-provided hook implementation.
func WithHooks(h Hooks) func(o *Options) {
	return func(o *Options) { o.Hooks = h }
}

// WithExtra attaches additional named attributes to the instance.
func WithExtra(extra map[string]any) func(o *Options) {
	return func(o *Options) { o.Extra = extra }
}

// Base is a fully constructed plugin instance: identity, resolved paths,
// persistence binding, function/config registries and the scheduler binding.
// The host drives it through Load and Unload exactly once each; registration
// methods are called from hook code. Base exclusively owns its registries and
// data store while only referencing the shared bus and scheduler.
type Base struct {
	identity  Identity
	paths     Paths
	firstLoad bool
	debug     bool

	bus       core.EventBus
	scheduler core.Scheduler
	logger    logging.Logger
	hooks     Hooks
	extra     map[string]any
	data      *store.Store

	mu    sync.Mutex
	state core.LifecycleState
	funcs []*core.Func
	confs []*core.Conf
	tasks map[string]core.TaskHandle
}

// New constructs a not-yet-loaded plugin instance. It fails with
// *IdentityError when name or version is missing and with *WorkspaceError
// when the resolved working directory exists but is not a directory. The
// working directory is created if absent and the first-load flag computed
// from its prior state.
func New(identity Identity, deps Deps, optFns ...func(o *Options)) (*Base, error) {
	if err := identity.validate(); err != nil {
		return nil, err
	}
	if deps.Bus == nil {
		return nil, fmt.Errorf("plugin %s: event bus is required", identity.Name)
	}
	if deps.Scheduler == nil {
		return nil, fmt.Errorf("plugin %s: scheduler is required", identity.Name)
	}

	opts := Options{
		Logger:         logging.NoOpLogger{},
		PersistentRoot: "data",
		SourceDir:      ".",
		Hooks:          NoopHooks{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	paths, firstLoad, err := resolvePaths(identity.Name, opts.PersistentRoot, opts.SourceDir, opts.SourceFile, identity.SaveFormat)
	if err != nil {
		return nil, err
	}

	data, err := store.New(paths.DataFile, identity.SaveFormat)
	if err != nil {
		return nil, err
	}

	extra := make(map[string]any, len(opts.Extra))
	for k, v := range opts.Extra {
		extra[k] = v
	}

	return &Base{
		identity:  identity,
		paths:     paths,
		firstLoad: firstLoad,
		debug:     opts.Debug,
		bus:       deps.Bus,
		scheduler: deps.Scheduler,
		logger:    opts.Logger,
		hooks:     opts.Hooks,
		extra:     extra,
		data:      data,
		state:     core.StateUninitialized,
		tasks:     map[string]core.TaskHandle{},
	}, nil
}

// Name returns the declared plugin name.
func (b *Base) Name() string { return b.identity.Name }

// Version returns the declared plugin version.
func (b *Base) Version() string { return b.identity.Version }

// Identity returns a copy of the declared identity.
func (b *Base) Identity() Identity { return b.identity }

// Paths returns the resolved on-disk locations.
func (b *Base) Paths() Paths { return b.paths }

// WorkDir returns the per-plugin persistent working directory.
func (b *Base) WorkDir() string { return b.paths.WorkDir }

// SourceDir returns the plugin's source directory.
func (b *Base) SourceDir() string { return b.paths.SourceDir }

// FirstLoad reports whether this is the plugin's first run against the
// persistent root. Computed once at construction.
func (b *Base) FirstLoad() bool { return b.firstLoad }

// Debug reports whether debug mode is active.
func (b *Base) Debug() bool { return b.debug }

// Data returns the persistence binding for direct tree access between load
// and save.
func (b *Base) Data() *store.Store { return b.data }

// Logger returns the plugin's logger.
func (b *Base) Logger() logging.Logger { return b.logger }

// Attr returns the extra attribute stored under key and whether it exists.
func (b *Base) Attr(key string) (any, bool) {
	v, ok := b.extra[key]
	return v, ok
}

// State returns the current lifecycle state.
func (b *Base) State() core.LifecycleState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// transition advances the lifecycle state when the current state matches
// from, failing loudly otherwise.
func (b *Base) transition(op string, from, to core.LifecycleState) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != from {
		return &LifecycleError{Plugin: b.identity.Name, Op: op, State: b.state}
	}
	b.state = to
	return nil
}

func (b *Base) setState(s core.LifecycleState) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
}

// Load runs the load transition: persistence load (with self-healing of a
// corrupt or missing store outside debug mode), then the synchronous Init
// hook off the calling goroutine, then the asynchronous OnLoad hook. A repeat
// call fails with *LifecycleError; a failed load reverts to uninitialized so
// the host can treat the plugin as absent.
func (b *Base) Load(ctx context.Context) error {
	if err := b.transition("load", core.StateUninitialized, core.StateLoading); err != nil {
		return err
	}
	start := time.Now()

	if err := b.loadData(); err != nil {
		b.setState(core.StateUninitialized)
		return err
	}

	if err := runOff(ctx, b.hooks.Init); err != nil {
		b.setState(core.StateUninitialized)
		return fmt.Errorf("plugin %s: init hook: %w", b.identity.Name, err)
	}
	if err := b.hooks.OnLoad(ctx); err != nil {
		b.setState(core.StateUninitialized)
		return fmt.Errorf("plugin %s: on-load hook: %w", b.identity.Name, err)
	}

	b.setState(core.StateLoaded)
	b.logger.Info("plugin loaded",
		"plugin", b.identity.Name, "version", b.identity.Version,
		"first_load", b.firstLoad, "duration", time.Since(start))
	return nil
}

// loadData loads the persisted tree, self-healing recoverable failures into a
// fresh empty store. Debug mode swallows recoverable failures without
// touching the file.
func (b *Base) loadData() error {
	err := b.data.Load()
	if err == nil {
		return nil
	}
	if !store.IsRecoverable(err) {
		return fmt.Errorf("plugin %s: %w", b.identity.Name, err)
	}
	if b.debug {
		b.logger.Warn("debug mode: skipping store recovery",
			"plugin", b.identity.Name, "error", err)
		return nil
	}

	b.logger.Warn("resetting unreadable plugin store",
		"plugin", b.identity.Name, "path", b.data.Path(), "error", err)
	if err := b.data.Reset(); err != nil {
		return fmt.Errorf("plugin %s: store recovery: %w", b.identity.Name, err)
	}
	if err := b.data.Load(); err != nil {
		return fmt.Errorf("plugin %s: store recovery: %w", b.identity.Name, err)
	}
	return nil
}

// Unload runs the unload transition: all Funcs leave the event bus and all
// scheduled tasks are cancelled before any teardown hook runs, then the
// synchronous Close hook runs off the calling goroutine, then the
// asynchronous OnClose hook, then the tree is persisted. In debug mode the
// save is skipped and the tree rendered for inspection instead. A save
// failure surfaces as *TeardownError; hook errors propagate unchanged. The
// transition is consumed even on failure.
func (b *Base) Unload(ctx context.Context, args ...any) error {
	if err := b.transition("unload", core.StateLoaded, core.StateUnloading); err != nil {
		return err
	}
	defer b.setState(core.StateUnloaded)
	start := time.Now()

	b.UnregisterAll()
	b.cancelScheduledTasks()

	if err := runOff(ctx, func() error { return b.hooks.Close(args...) }); err != nil {
		return fmt.Errorf("plugin %s: close hook: %w", b.identity.Name, err)
	}
	if err := b.hooks.OnClose(ctx, args...); err != nil {
		return fmt.Errorf("plugin %s: on-close hook: %w", b.identity.Name, err)
	}

	if b.debug {
		b.logger.Warn("debug mode: skipping save on unload", "plugin", b.identity.Name)
		fmt.Fprintln(os.Stdout, b.data.Render(b.identity.Name))
	} else if err := b.data.Save(); err != nil {
		return &TeardownError{Plugin: b.identity.Name, Err: err}
	}

	b.logger.Info("plugin unloaded",
		"plugin", b.identity.Name, "duration", time.Since(start))
	return nil
}

// runOff executes fn on its own goroutine and waits for it, so a blocking
// hook cannot stall the caller's cooperative loop beyond this plugin's own
// transition. Context cancellation abandons the wait, not the hook.
func runOff(ctx context.Context, fn func() error) error {
	errCh := make(chan error, 1)
	go func() { errCh <- fn() }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
