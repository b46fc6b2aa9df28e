package pluginmesh

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pluginmesh/core"
	"github.com/hupe1980/pluginmesh/plugin"
)

// echoPlugin registers a single admin "ping" func during load.
type echoPlugin struct {
	*plugin.Base
	plugin.NoopHooks

	raise bool
	hits  atomic.Int64
}

func (e *echoPlugin) OnLoad(context.Context) error {
	opts := []plugin.FuncOption{plugin.WithRawFilter("ping")}
	if e.raise {
		opts = append(opts, plugin.WithPermissionRaise())
	}
	return e.RegisterAdminFunc("ping", func(context.Context, *core.Message) error {
		e.hits.Add(1)
		return nil
	}, opts...)
}

func newEcho(t *testing.T, h *Host, raise bool) *echoPlugin {
	t.Helper()
	e := &echoPlugin{raise: raise}
	base, err := h.NewPlugin(
		plugin.Identity{Name: "Echo", Version: "1.0"},
		plugin.WithSourceDir(t.TempDir()),
		plugin.WithHooks(e),
	)
	require.NoError(t, err)
	e.Base = base
	return e
}

func TestEchoEndToEnd(t *testing.T) {
	ctx := context.Background()
	h := New(t.TempDir())
	defer h.Shutdown(ctx)

	e := newEcho(t, h, false)
	require.NoError(t, h.Attach(ctx, e.Base))
	assert.Equal(t, core.StateLoaded, e.State())

	// ADMIN caller: handler invoked.
	handled, err := h.Publish(ctx, core.NewMessage("ping",
		core.Sender{ID: "root", Permission: core.PermissionAdmin}))
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, int64(1), e.hits.Load())

	// USER caller without PermissionRaise: silently skipped.
	handled, err = h.Publish(ctx, core.NewMessage("ping",
		core.Sender{ID: "guest", Permission: core.PermissionUser}))
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Equal(t, int64(1), e.hits.Load())
}

func TestEchoPermissionRaise(t *testing.T) {
	ctx := context.Background()
	h := New(t.TempDir())
	defer h.Shutdown(ctx)

	e := newEcho(t, h, true)
	require.NoError(t, h.Attach(ctx, e.Base))

	_, err := h.Publish(ctx, core.NewMessage("ping",
		core.Sender{ID: "guest", Permission: core.PermissionUser}))
	assert.ErrorIs(t, err, core.ErrPermissionDenied)
	assert.Equal(t, int64(0), e.hits.Load())
}

func TestAttachRejectsDuplicateName(t *testing.T) {
	ctx := context.Background()
	h := New(t.TempDir())
	defer h.Shutdown(ctx)

	first := newEcho(t, h, false)
	require.NoError(t, h.Attach(ctx, first.Base))

	second := newEcho(t, h, false)
	err := h.Attach(ctx, second.Base)
	require.Error(t, err)
	// The rejected plugin never started its load transition.
	assert.Equal(t, core.StateUninitialized, second.State())
}

func TestDetach(t *testing.T) {
	ctx := context.Background()
	h := New(t.TempDir())
	defer h.Shutdown(ctx)

	e := newEcho(t, h, false)
	require.NoError(t, h.Attach(ctx, e.Base))
	require.NotNil(t, h.Plugin("Echo"))

	require.NoError(t, h.Detach(ctx, "Echo"))
	assert.Nil(t, h.Plugin("Echo"))
	assert.Equal(t, core.StateUnloaded, e.State())

	// After detach nothing handles the message anymore.
	handled, err := h.Publish(ctx, core.NewMessage("ping",
		core.Sender{ID: "root", Permission: core.PermissionAdmin}))
	require.NoError(t, err)
	assert.False(t, handled)

	assert.Error(t, h.Detach(ctx, "Echo"))
}

func TestShutdownDetachesEverything(t *testing.T) {
	ctx := context.Background()
	h := New(t.TempDir())

	e := newEcho(t, h, false)
	require.NoError(t, h.Attach(ctx, e.Base))

	require.NoError(t, h.Shutdown(ctx))
	assert.Empty(t, h.Plugins())
	assert.Equal(t, core.StateUnloaded, e.State())
}

func TestHostPropagatesDefaults(t *testing.T) {
	root := t.TempDir()
	h := New(root, WithDebug())
	defer h.Shutdown(context.Background())

	p, err := h.NewPlugin(
		plugin.Identity{Name: "demo", Version: "1.0"},
		plugin.WithSourceDir(t.TempDir()),
	)
	require.NoError(t, err)
	assert.True(t, p.Debug())
	assert.Contains(t, p.WorkDir(), root)
}
