package modcache_test

import (
	"errors"
	"testing"

	"github.com/quilldb/quill/internal/core/domain"
	"github.com/quilldb/quill/internal/engine/modcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FirstLoad(t *testing.T) {
	h := newHarness()
	h.addLib("math", 1, map[string]domain.ExtensionFunc{"add": adder(1)})

	m, err := h.engine.Load("math")
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.Equal(t, 1, m.Refs())
	assert.Same(t, m, h.engine.Lookup(modcache.TableExplicit, "math"))
	assert.Nil(t, h.engine.Lookup(modcache.TableLegacy, "math"))
	assert.EqualValues(t, 1, h.opener.opens.Load())
	// Staging is always cleaned up, success or failure.
	assert.EqualValues(t, 1, h.stager.cleanups.Load())
}

func TestLoad_CacheHitIncrementsRefs(t *testing.T) {
	h := newHarness()
	h.addLib("math", 1, map[string]domain.ExtensionFunc{"add": adder(1)})

	m1, err := h.engine.Load("math")
	require.NoError(t, err)
	m2, err := h.engine.Load("math")
	require.NoError(t, err)

	assert.Same(t, m1, m2)
	assert.Equal(t, 2, m1.Refs())
	assert.EqualValues(t, 1, h.opener.opens.Load(), "fresh cached module must not be re-loaded")

	h.engine.Unload(m2)
	assert.Equal(t, 1, m1.Refs())
	h.engine.Unload(m1)
	assert.Nil(t, h.engine.Lookup(modcache.TableExplicit, "math"))
	assert.EqualValues(t, 1, h.opener.closes.Load())
}

func TestLoad_StaleBackingFileReplacesModule(t *testing.T) {
	h := newHarness()
	path := h.addLib("math", 1, map[string]domain.ExtensionFunc{"add": adder(1)})

	old, err := h.engine.Load("math")
	require.NoError(t, err)
	oldBinding, err := h.engine.ResolveAndBindModule(old, "math.add")
	require.NoError(t, err)

	// Rewrite the backing file: new identity, new behavior.
	h.disk.put(path, &fakeLib{ident: identity(2), syms: map[string]domain.ExtensionFunc{"add": adder(2)}})

	fresh, err := h.engine.Load("math")
	require.NoError(t, err)
	require.NotSame(t, old, fresh)
	assert.False(t, fresh.Identity().Equal(old.Identity()))
	assert.Same(t, fresh, h.engine.Lookup(modcache.TableExplicit, "math"))

	// The superseded module is orphaned but stays alive and callable
	// through its outstanding references.
	assert.True(t, old.Orphaned())
	assert.Equal(t, 2, old.Refs())
	resp, err := h.engine.Call(oldBinding, []byte{2, 3})
	require.NoError(t, err)
	assert.Equal(t, []byte{5}, resp)

	resp, err = h.engine.Call(mustBind(t, h, fresh, "math.add"), []byte{2, 3})
	require.NoError(t, err)
	assert.Equal(t, []byte{10}, resp)

	// Draining the old module's references closes its image exactly once.
	h.engine.Unbind(oldBinding)
	assert.EqualValues(t, 0, h.opener.closes.Load())
	h.engine.Unload(old)
	assert.EqualValues(t, 1, h.opener.closes.Load())
}

func mustBind(t *testing.T, h *harness, m *modcache.Module, name string) *modcache.Binding {
	t.Helper()
	b, err := h.engine.ResolveAndBindModule(m, name)
	require.NoError(t, err)
	return b
}

func TestLoad_ModuleNotFound(t *testing.T) {
	h := newHarness()

	_, err := h.engine.Load("nosuch")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrModuleNotFound)
}

func TestLoad_OpenFailure(t *testing.T) {
	h := newHarness()
	path := h.addLib("broken", 1, nil)
	h.disk.put(path, &fakeLib{ident: identity(1), openErr: errors.New("not an ELF image")})

	_, err := h.engine.Load("broken")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLoadFailed)
	// The staged copy is removed even when the load fails.
	assert.EqualValues(t, 1, h.stager.cleanups.Load())
	assert.Nil(t, h.engine.Lookup(modcache.TableExplicit, "broken"))
}

func TestResolveAndBind_SharesLegacyModule(t *testing.T) {
	h := newHarness()
	h.addLib("math", 1, map[string]domain.ExtensionFunc{
		"add": adder(1),
		"mul": adder(1),
	})

	b1, err := h.engine.ResolveAndBind("math.add")
	require.NoError(t, err)
	b2, err := h.engine.ResolveAndBind("math.mul")
	require.NoError(t, err)

	m := h.engine.Lookup(modcache.TableLegacy, "math")
	require.NotNil(t, m)
	assert.Same(t, m, b1.Owner())
	assert.Same(t, m, b2.Owner())
	assert.Equal(t, 2, m.Refs())
	assert.Equal(t, 2, m.BindingCount())
	assert.EqualValues(t, 1, h.opener.opens.Load())
}

func TestResolveAndBind_LegacyIgnoresStaleBackingFile(t *testing.T) {
	h := newHarness()
	path := h.addLib("math", 1, map[string]domain.ExtensionFunc{"add": adder(1)})

	b1, err := h.engine.ResolveAndBind("math.add")
	require.NoError(t, err)

	// The legacy table keeps serving the loaded copy no matter what
	// happens to the file; only an explicit reload picks up the rewrite.
	h.disk.put(path, &fakeLib{ident: identity(2), syms: map[string]domain.ExtensionFunc{"add": adder(2)}})

	b2, err := h.engine.ResolveAndBind("math.add")
	require.NoError(t, err)
	assert.Same(t, b1.Owner(), b2.Owner())
	assert.EqualValues(t, 1, h.opener.opens.Load())
}

func TestResolveAndBind_FunctionNotFound(t *testing.T) {
	h := newHarness()
	h.addLib("math", 1, map[string]domain.ExtensionFunc{"add": adder(1)})

	_, err := h.engine.ResolveAndBind("math.nosuch")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFunctionNotFound)

	// The module was loaded just for this resolution; the failed bind
	// released the only reference, destroying it.
	assert.Nil(t, h.engine.Lookup(modcache.TableLegacy, "math"))
	assert.Equal(t, h.opener.opens.Load(), h.opener.closes.Load())
}

func TestResolveAndBind_ExplicitAndLegacyAreIndependent(t *testing.T) {
	h := newHarness()
	h.addLib("math", 1, map[string]domain.ExtensionFunc{"add": adder(1)})

	m, err := h.engine.Load("math")
	require.NoError(t, err)
	_, err = h.engine.ResolveAndBind("math.add")
	require.NoError(t, err)

	// Same package, two tables, two separate module instances.
	legacy := h.engine.Lookup(modcache.TableLegacy, "math")
	require.NotNil(t, legacy)
	assert.NotSame(t, m, legacy)
	assert.EqualValues(t, 2, h.opener.opens.Load())
}

func TestCall_DispatchesRequestAndResponse(t *testing.T) {
	h := newHarness()
	h.addLib("math", 1, map[string]domain.ExtensionFunc{"add": adder(1)})

	b, err := h.engine.ResolveAndBind("math.add")
	require.NoError(t, err)

	resp, err := h.engine.Call(b, []byte{2, 3})
	require.NoError(t, err)
	assert.Equal(t, []byte{5}, resp)
}

func TestCall_DeferredBindingResolvesLazily(t *testing.T) {
	h := newHarness()

	b := h.engine.NewDeferredBinding("math.add")
	require.False(t, b.Resolved())

	// The extension does not exist yet: the deferred load fails at call
	// time, not at creation time.
	_, err := h.engine.Call(b, []byte{1})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrModuleNotFound)

	h.addLib("math", 1, map[string]domain.ExtensionFunc{"add": adder(1)})

	resp, err := h.engine.Call(b, []byte{2, 3})
	require.NoError(t, err)
	assert.Equal(t, []byte{5}, resp)
	assert.True(t, b.Resolved())
}

func TestCall_SynthesizesErrorWithoutDiagnostic(t *testing.T) {
	h := newHarness()
	diag := errors.New("division by zero")
	h.addLib("math", 1, map[string]domain.ExtensionFunc{
		"silent": func(_ []byte, _ *domain.Sink) bool { return false },
		"loud": func(_ []byte, out *domain.Sink) bool {
			out.Fail(diag)
			return false
		},
	})

	b, err := h.engine.ResolveAndBind("math.silent")
	require.NoError(t, err)
	_, err = h.engine.Call(b, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCallFailed)

	b, err = h.engine.ResolveAndBind("math.loud")
	require.NoError(t, err)
	_, err = h.engine.Call(b, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, diag)
	assert.NotErrorIs(t, err, domain.ErrCallFailed)
}

func TestUnbind_LastBindingDestroysModule(t *testing.T) {
	h := newHarness()
	h.addLib("math", 1, map[string]domain.ExtensionFunc{"add": adder(1)})

	b, err := h.engine.ResolveAndBind("math.add")
	require.NoError(t, err)

	h.engine.Unbind(b)
	assert.False(t, b.Resolved())
	assert.Nil(t, h.engine.Lookup(modcache.TableLegacy, "math"))
	assert.EqualValues(t, 1, h.opener.closes.Load())

	// Unbinding again is a no-op.
	h.engine.Unbind(b)
	assert.EqualValues(t, 1, h.opener.closes.Load())
}

func TestShutdown_DrainsBothTables(t *testing.T) {
	h := newHarness()
	h.addLib("math", 1, map[string]domain.ExtensionFunc{"add": adder(1)})
	h.addLib("str", 1, map[string]domain.ExtensionFunc{"upper": adder(1)})

	// Explicit load never unloaded by its caller, and a legacy module
	// held only by its binding.
	_, err := h.engine.Load("math")
	require.NoError(t, err)
	_, err = h.engine.ResolveAndBind("str.upper")
	require.NoError(t, err)

	h.engine.Shutdown()
	assert.Equal(t, h.opener.opens.Load(), h.opener.closes.Load())
	assert.Nil(t, h.engine.Lookup(modcache.TableExplicit, "math"))
	assert.Nil(t, h.engine.Lookup(modcache.TableLegacy, "str"))
}

func TestShutdown_ReportsLeaks(t *testing.T) {
	h := newHarness()
	h.addLib("math", 1, map[string]domain.ExtensionFunc{"add": adder(1)})

	m, err := h.engine.Load("math")
	require.NoError(t, err)
	// Two outstanding caller references; the drain drops only one.
	m2, err := h.engine.Load("math")
	require.NoError(t, err)
	require.Same(t, m, m2)

	h.engine.Shutdown()
	assert.Equal(t, 1, m.Refs())
	require.Len(t, h.log.warnings(), 1)
	assert.Contains(t, h.log.warnings()[0], "math")
}

func TestEndToEnd_BindCallUnbindShutdown(t *testing.T) {
	h := newHarness()
	h.addLib("math", 1, map[string]domain.ExtensionFunc{"add": adder(1)})

	b, err := h.engine.ResolveAndBind("math.add")
	require.NoError(t, err)

	resp, err := h.engine.Call(b, []byte{2, 3})
	require.NoError(t, err)
	require.Equal(t, []byte{5}, resp)

	h.engine.Unbind(b)
	h.engine.Shutdown()

	assert.Equal(t, h.opener.opens.Load(), h.opener.closes.Load(), "every image closed")
	assert.Empty(t, h.log.warnings(), "no modules leaked")
}
