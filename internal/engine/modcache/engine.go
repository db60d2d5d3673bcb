package modcache

import (
	"fmt"
	"sync"

	"github.com/quilldb/quill/internal/core/domain"
	"github.com/quilldb/quill/internal/core/ports"
	"go.trai.ch/zerr"
)

// Engine is the extension loader and cache.
//
// A single mutex guards the tables, refcounts and binding sets. The mutex
// is deliberately not held across the two blocking stretches of engine
// work: the resolve-stage-open sequence of a load and the foreign call.
// Staging copies bytes on disk and extension code may block for arbitrary
// reasons; while either is in flight, other goroutines stay free to
// dispatch, load or reload unrelated packages. Two mechanisms cover those
// unlocked windows: the transient reference taken on the call path keeps a
// module alive while its entry point runs, and a load re-checks its table
// after the image is open, discarding its own image and adopting the
// winner's when a concurrent load of the same package got there first.
//
// Concurrent Reload of the same package is not guarded here; the engine
// assumes at most one reload transaction per package at a time, enforced by
// the caller. No engine operation supports cancellation: each runs to
// completion or failure.
type Engine struct {
	mu       sync.Mutex
	cache    *cache
	resolver ports.PathResolver
	stager   ports.Stager
	opener   ports.ImageOpener
	log      ports.Logger
}

// New creates an Engine with empty tables.
func New(resolver ports.PathResolver, stager ports.Stager, opener ports.ImageOpener, log ports.Logger) *Engine {
	return &Engine{
		cache:    newCache(),
		resolver: resolver,
		stager:   stager,
		opener:   opener,
		log:      log,
	}
}

// ref takes a reference on m. Engine mutex held.
func (e *Engine) ref(m *Module) {
	if m.refs < 0 {
		panic(fmt.Sprintf("modcache: negative refcount on %q", m.pkg))
	}
	m.refs++
}

// unref drops a reference on m and destroys it when the last one goes: the
// module leaves its table (if still present) and the image is closed
// exactly once. Engine mutex held.
func (e *Engine) unref(m *Module) {
	if m.refs <= 0 {
		panic(fmt.Sprintf("modcache: refcount underflow on %q", m.pkg))
	}
	m.refs--
	if m.refs > 0 {
		return
	}
	if !m.orphan {
		e.cache.remove(m)
	}
	if err := m.image.Close(); err != nil {
		e.log.Error(zerr.With(zerr.Wrap(err, "failed to close module image"), "package", m.pkg))
	}
	m.image = nil
}

// newModule resolves, stages and loads a fresh image for pkg. The returned
// module carries one reference owned by the caller and is in no table yet.
// Runs without the engine mutex: it touches only the stateless ports.
func (e *Engine) newModule(pkg string, t Table) (*Module, error) {
	path, err := e.resolver.Resolve(pkg)
	if err != nil {
		return nil, zerr.With(zerr.With(domain.ErrModuleNotFound, "package", pkg), "reason", err.Error())
	}
	return e.newModuleAt(pkg, path, t)
}

// newModuleAt is newModule with the path already resolved.
func (e *Engine) newModuleAt(pkg, path string, t Table) (*Module, error) {
	ident, err := e.stager.Identity(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to stat module file"), "package", pkg)
	}

	staged, err := e.stager.Stage(path, pkg)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to stage module copy"), "package", pkg)
	}

	// The staged copy exists only to defeat path-identity deduplication in
	// the platform loader; it is removed as soon as the image is open.
	image, err := e.opener.Open(staged.Path)
	staged.Cleanup()
	if err != nil {
		return nil, zerr.With(zerr.With(domain.ErrLoadFailed, "package", pkg), "reason", err.Error())
	}

	e.log.Info(fmt.Sprintf("loaded package %q from %s (checksum %016x)", pkg, path, staged.Checksum))
	return &Module{
		pkg:      pkg,
		image:    image,
		ident:    ident,
		checksum: staged.Checksum,
		refs:     1,
		bindings: make(map[*Binding]struct{}),
		table:    t,
	}, nil
}

// legacyModule finds or loads the legacy-table module for pkg and returns
// it with one reference for the caller. The legacy table is authoritative
// once populated: a module updated or removed on disk keeps serving from
// the loaded copy until an explicit Reload. The load itself runs outside
// the engine mutex; on reacquisition the table is re-checked, and a loser
// of a concurrent load race adopts the winner's module.
func (e *Engine) legacyModule(pkg string) (*Module, error) {
	e.mu.Lock()
	if cached := e.cache.find(TableLegacy, pkg); cached != nil {
		e.ref(cached)
		e.mu.Unlock()
		return cached, nil
	}
	e.mu.Unlock()

	m, err := e.newModule(pkg, TableLegacy)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if cached := e.cache.find(TableLegacy, pkg); cached != nil {
		// The first loader's module is canonical.
		e.ref(cached)
		m.markOrphan()
		e.unref(m)
		return cached, nil
	}
	e.cache.insert(m)
	return m, nil
}

// bind resolves b's symbol and links it to its owning module. The module is
// the explicitly supplied one when non-nil, otherwise the legacy-table
// module for b's package. Loading and symbol resolution run outside the
// engine mutex; only the final linkage is committed under it.
func (e *Engine) bind(b *Binding, explicit *Module) error {
	var m *Module
	if explicit != nil {
		e.mu.Lock()
		e.ref(explicit)
		e.mu.Unlock()
		m = explicit
	} else {
		var err error
		if m, err = e.legacyModule(b.name.Package); err != nil {
			return err
		}
	}

	// The reference taken above keeps the image alive across the lookup.
	fn, lookupErr := m.image.Lookup(b.name.Symbol)

	e.mu.Lock()
	defer e.mu.Unlock()
	if lookupErr != nil {
		e.unref(m)
		return zerr.With(zerr.With(domain.ErrFunctionNotFound, "package", b.name.Package), "symbol", b.name.Symbol)
	}
	if b.fn != nil {
		// A concurrent call resolved the same handle first; keep its
		// linkage and drop the reference this attempt took.
		e.unref(m)
		return nil
	}

	b.fn = fn
	b.owner = m
	m.bindings[b] = struct{}{}
	return nil
}

// NewDeferredBinding creates an unresolved legacy binding. Resolution is
// deferred to the first Call, so a missing module or symbol surfaces as a
// call-time error. Kept for backward compatibility with function
// definitions created before their extension exists on disk.
func (e *Engine) NewDeferredBinding(qualified string) *Binding {
	return &Binding{
		qualified: qualified,
		name:      domain.SplitName(qualified),
		legacy:    true,
	}
}

// ResolveAndBind resolves a qualified name through the legacy table,
// loading the owning module on a cache miss.
func (e *Engine) ResolveAndBind(qualified string) (*Binding, error) {
	b := e.NewDeferredBinding(qualified)
	if err := e.bind(b, nil); err != nil {
		return nil, err
	}
	return b, nil
}

// ResolveAndBindModule resolves a qualified name inside an explicitly
// loaded module.
func (e *Engine) ResolveAndBindModule(m *Module, qualified string) (*Binding, error) {
	b := &Binding{
		qualified: qualified,
		name:      domain.SplitName(qualified),
	}
	if err := e.bind(b, m); err != nil {
		return nil, err
	}
	return b, nil
}

// Unbind unlinks the binding from its owner and releases the owner
// reference. Unbinding an unresolved binding is a no-op.
func (e *Engine) Unbind(b *Binding) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if b.fn == nil {
		return
	}
	owner := b.owner
	delete(owner.bindings, b)
	b.owner = nil
	b.fn = nil
	// Last: dropping the reference may destroy the module.
	e.unref(owner)
}

// Call invokes the binding's entry point with an opaque request payload and
// returns the bytes the extension wrote to its output sink.
//
// The owning module is pinned with a transient reference for the duration
// of the invocation: the engine mutex is released while foreign code runs,
// so a concurrent Reload or Unbind may drop every other reference, and the
// module must still outlive the call.
func (e *Engine) Call(b *Binding, req []byte) ([]byte, error) {
	e.mu.Lock()
	for b.fn == nil {
		if !b.legacy {
			e.mu.Unlock()
			return nil, zerr.With(zerr.New("binding is not resolved"), "name", b.qualified)
		}
		e.mu.Unlock()
		if err := e.bind(b, nil); err != nil {
			return nil, err
		}
		e.mu.Lock()
	}
	owner := b.owner
	fn := b.fn
	e.ref(owner)
	e.mu.Unlock()

	out := &domain.Sink{}
	ok := fn(req, out)

	e.mu.Lock()
	e.unref(owner)
	e.mu.Unlock()

	if !ok {
		if err := out.Err(); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "extension reported failure"), "name", b.qualified)
		}
		return nil, zerr.With(domain.ErrCallFailed, "name", b.qualified)
	}
	return out.Bytes(), nil
}

// Load loads a package through the explicit interface. A cached module is
// revalidated against its backing file and transparently replaced when
// stale; the previous instance is orphaned and drains through outstanding
// references. The caller owns the returned reference and must Unload it.
//
// The resolve-stage-open sequence runs outside the engine mutex. The table
// is re-checked once the image is open: a concurrent Load that won the
// race for the same file state is adopted and this one's image discarded.
func (e *Engine) Load(pkg string) (*Module, error) {
	path, err := e.resolver.Resolve(pkg)
	if err != nil {
		return nil, zerr.With(zerr.With(domain.ErrModuleNotFound, "package", pkg), "reason", err.Error())
	}

	ident, err := e.stager.Identity(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to stat module file"), "package", pkg)
	}

	e.mu.Lock()
	if cached := e.cache.find(TableExplicit, pkg); cached != nil && !cached.stale(ident) {
		e.ref(cached)
		e.mu.Unlock()
		return cached, nil
	}
	e.mu.Unlock()

	m, err := e.newModuleAt(pkg, path, TableExplicit)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	cached := e.cache.find(TableExplicit, pkg)
	switch {
	case cached == nil:
		e.cache.insert(m)
	case cached.stale(m.ident):
		e.cache.update(m)
		cached.markOrphan()
	default:
		// A concurrent Load of the same file state won the race; its
		// module is canonical.
		e.ref(cached)
		m.markOrphan()
		e.unref(m)
		return cached, nil
	}
	return m, nil
}

// Unload releases a reference returned by Load.
func (e *Engine) Unload(m *Module) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.unref(m)
}

// Shutdown drains both tables, dropping one reference per surviving entry.
// Modules kept alive past that by outstanding bindings are leaks and are
// reported.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for t := Table(0); t < tableCount; t++ {
		entries := make([]*Module, 0, len(e.cache.tables[t]))
		for _, m := range e.cache.tables[t] {
			entries = append(entries, m)
		}
		for _, m := range entries {
			e.unref(m)
			if m.refs > 0 {
				e.log.Warn(fmt.Sprintf("package %q leaked at shutdown (%d references outstanding)", m.pkg, m.refs))
			}
		}
	}
}
