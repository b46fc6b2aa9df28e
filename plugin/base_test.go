package plugin

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pluginmesh/core"
	"github.com/hupe1980/pluginmesh/store"
)

// recorderHooks records hook invocation order and forwards to optional
// closures for extra behavior.
type recorderHooks struct {
	mu    sync.Mutex
	calls []string
	args  []any

	initErr    error
	onLoadErr  error
	closeErr   error
	onCloseErr error

	onLoadFn func(ctx context.Context) error
	closeFn  func(args ...any) error
}

func (r *recorderHooks) record(name string) {
	r.mu.Lock()
	r.calls = append(r.calls, name)
	r.mu.Unlock()
}

func (r *recorderHooks) Init() error {
	r.record("init")
	return r.initErr
}

func (r *recorderHooks) OnLoad(ctx context.Context) error {
	r.record("onload")
	if r.onLoadFn != nil {
		if err := r.onLoadFn(ctx); err != nil {
			return err
		}
	}
	return r.onLoadErr
}

func (r *recorderHooks) Close(args ...any) error {
	r.record("close")
	r.mu.Lock()
	r.args = args
	r.mu.Unlock()
	if r.closeFn != nil {
		if err := r.closeFn(args...); err != nil {
			return err
		}
	}
	return r.closeErr
}

func (r *recorderHooks) OnClose(context.Context, ...any) error {
	r.record("onclose")
	return r.onCloseErr
}

func (r *recorderHooks) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

func TestLoadRunsHooksInOrder(t *testing.T) {
	hooks := &recorderHooks{}
	p, _, _ := newTestPlugin(t, WithHooks(hooks))

	require.NoError(t, p.Load(context.Background()))
	assert.Equal(t, []string{"init", "onload"}, hooks.recorded())
	assert.Equal(t, core.StateLoaded, p.State())
}

func TestLoadTwiceFailsLoudly(t *testing.T) {
	p, _, _ := newTestPlugin(t)
	require.NoError(t, p.Load(context.Background()))

	err := p.Load(context.Background())
	var le *LifecycleError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "load", le.Op)
	assert.Equal(t, core.StateLoaded, le.State)
}

func TestUnloadBeforeLoadFailsLoudly(t *testing.T) {
	p, _, _ := newTestPlugin(t)
	var le *LifecycleError
	assert.ErrorAs(t, p.Unload(context.Background()), &le)
}

func TestUnloadTwiceFailsLoudly(t *testing.T) {
	p, _, _ := newTestPlugin(t)
	require.NoError(t, p.Load(context.Background()))
	require.NoError(t, p.Unload(context.Background()))

	var le *LifecycleError
	require.ErrorAs(t, p.Unload(context.Background()), &le)
	assert.Equal(t, core.StateUnloaded, le.State)
}

func TestUnloadUnregistersBeforeCloseHooks(t *testing.T) {
	hooks := &recorderHooks{}
	p, b, sched := newTestPlugin(t, WithHooks(hooks))

	hooks.onLoadFn = func(context.Context) error {
		if err := p.RegisterUserFunc("ping", noopHandler, WithRawFilter("ping")); err != nil {
			return err
		}
		return p.AddScheduledTask("tick", "1m", func() {})
	}
	busEmpty, schedEmpty := false, false
	hooks.closeFn = func(...any) error {
		busEmpty = b.Len() == 0
		schedEmpty = sched.live() == 0
		return nil
	}

	require.NoError(t, p.Load(context.Background()))
	require.Equal(t, 1, b.Len())
	require.Equal(t, 1, sched.live())

	require.NoError(t, p.Unload(context.Background(), "reason", 42))
	assert.True(t, busEmpty, "funcs must leave the bus before the close hook runs")
	assert.True(t, schedEmpty, "tasks must be cancelled before the close hook runs")
	assert.Equal(t, []string{"init", "onload", "close", "onclose"}, hooks.recorded())
	assert.Equal(t, []any{"reason", 42}, hooks.args)
	assert.Equal(t, core.StateUnloaded, p.State())
}

func TestInitHookErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	hooks := &recorderHooks{initErr: boom}
	p, _, _ := newTestPlugin(t, WithHooks(hooks))

	err := p.Load(context.Background())
	require.ErrorIs(t, err, boom)
	// OnLoad never ran and the failed transition reverts.
	assert.Equal(t, []string{"init"}, hooks.recorded())
	assert.Equal(t, core.StateUninitialized, p.State())
}

func TestCloseHookErrorSkipsSave(t *testing.T) {
	boom := errors.New("boom")
	hooks := &recorderHooks{closeErr: boom}
	p, _, _ := newTestPlugin(t, WithHooks(hooks))

	require.NoError(t, p.Load(context.Background()))
	p.Data().Set("k", "v")

	err := p.Unload(context.Background())
	require.ErrorIs(t, err, boom)
	// The transition is consumed and nothing was persisted: the file still
	// holds the empty tree written by the missing-file recovery during load.
	assert.Equal(t, core.StateUnloaded, p.State())
	raw, readErr := os.ReadFile(p.Paths().DataFile)
	require.NoError(t, readErr)
	assert.NotContains(t, string(raw), "\"k\"")
}

func TestLoadRecoversCorruptStore(t *testing.T) {
	p, _, _ := newTestPlugin(t)
	require.NoError(t, os.WriteFile(p.Paths().DataFile, []byte("{not json"), 0o644))

	require.NoError(t, p.Load(context.Background()))
	assert.Equal(t, 0, p.Data().Len())

	// The file was healed on disk, not just in memory.
	healed, err := store.New(p.Paths().DataFile, store.FormatJSON)
	require.NoError(t, err)
	require.NoError(t, healed.Load())
	assert.Equal(t, 0, healed.Len())
}

func TestLoadDebugSwallowsCorruptStore(t *testing.T) {
	p, _, _ := newTestPlugin(t, WithDebug())
	require.True(t, p.Debug())
	require.NoError(t, os.WriteFile(p.Paths().DataFile, []byte("{not json"), 0o644))
	p.Data().Set("keep", "me")

	require.NoError(t, p.Load(context.Background()))

	// In-memory tree unchanged, file untouched.
	v, ok := p.Data().Get("keep")
	assert.True(t, ok)
	assert.Equal(t, "me", v)
	raw, err := os.ReadFile(p.Paths().DataFile)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(raw))
}

func TestUnloadDebugSkipsSave(t *testing.T) {
	p, _, _ := newTestPlugin(t, WithDebug())
	require.NoError(t, p.Load(context.Background()))
	p.Data().Set("k", "v")

	require.NoError(t, p.Unload(context.Background()))
	assert.NoFileExists(t, p.Paths().DataFile)
}

func TestUnloadSaveFailure(t *testing.T) {
	p, _, _ := newTestPlugin(t)
	require.NoError(t, p.Load(context.Background()))
	// Channels cannot be encoded as JSON, so the save must fail.
	p.Data().Set("bad", make(chan int))

	err := p.Unload(context.Background())
	var te *TeardownError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "demo", te.Plugin)
	var se *store.SaveError
	assert.ErrorAs(t, err, &se)
}

func TestDataSurvivesReload(t *testing.T) {
	root := t.TempDir()
	src := t.TempDir()
	id := Identity{Name: "demo", Version: "1.0"}

	p, err := New(id, newTestDeps(), WithPersistentRoot(root), WithSourceDir(src))
	require.NoError(t, err)
	require.True(t, p.FirstLoad())
	require.NoError(t, p.Load(context.Background()))
	p.Data().Set("visits", float64(7))
	require.NoError(t, p.Unload(context.Background()))

	p, err = New(id, newTestDeps(), WithPersistentRoot(root), WithSourceDir(src))
	require.NoError(t, err)
	assert.False(t, p.FirstLoad())
	require.NoError(t, p.Load(context.Background()))
	v, ok := p.Data().Get("visits")
	require.True(t, ok)
	assert.Equal(t, float64(7), v)
}
