package modcache

import (
	"fmt"

	"github.com/quilldb/quill/internal/core/domain"
	"go.trai.ch/zerr"
)

// Reload replaces the legacy-table module for pkg with a freshly loaded
// image and migrates every binding onto it. The replacement is loaded
// outside the cache, so the old module keeps serving lookups until the
// migration commits. If any symbol fails to resolve in the replacement the
// whole transaction rolls back and the original module stays in place,
// bindings and refcounts untouched.
func (e *Engine) Reload(pkg string) error {
	e.mu.Lock()
	old := e.cache.find(TableLegacy, pkg)
	if old == nil {
		e.mu.Unlock()
		return zerr.With(domain.ErrModuleNotFound, "package", pkg)
	}

	// Transaction reference: keeps old alive and in its table while the
	// replacement is staged outside the lock, and for the whole migration
	// even once every binding has moved away. Calls bound to old keep
	// dispatching through it for that entire window.
	e.ref(old)
	e.mu.Unlock()

	next, err := e.newModule(pkg, TableLegacy)
	if err != nil {
		e.mu.Lock()
		e.unref(old)
		e.mu.Unlock()
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// The binding set mutates as entries migrate; iterate a snapshot.
	snapshot := make([]*Binding, 0, len(old.bindings))
	for b := range old.bindings {
		snapshot = append(snapshot, b)
	}

	migrated := make([]*Binding, 0, len(snapshot))
	for _, b := range snapshot {
		fn, err := next.image.Lookup(b.name.Symbol)
		if err != nil {
			e.log.Error(zerr.With(zerr.With(zerr.New("reload: symbol missing in replacement"), "package", pkg), "symbol", b.name.Symbol))
			e.rollback(old, next, migrated)
			return zerr.With(zerr.With(domain.ErrFunctionNotFound, "package", pkg), "symbol", b.name.Symbol)
		}

		delete(old.bindings, b)
		next.bindings[b] = struct{}{}
		b.owner = next
		b.fn = fn
		e.ref(next)
		e.unref(old)
		migrated = append(migrated, b)
	}

	// Commit: future lookups see the replacement.
	e.cache.update(next)
	old.markOrphan()
	// Transaction reference on old, then the loader's own reference on
	// next: ownership now lives solely in bindings and the cache entry.
	e.unref(old)
	e.unref(next)
	return nil
}

// rollback restores bindings already migrated to next back onto old. Every
// one of these symbols resolved inside old before, so a re-resolution
// failure means the loaded image itself is no longer sound; partially
// migrated state cannot be expressed safely, so it aborts.
func (e *Engine) rollback(old, next *Module, migrated []*Binding) {
	for _, b := range migrated {
		fn, err := old.image.Lookup(b.name.Symbol)
		if err != nil {
			panic(fmt.Sprintf("modcache: cannot restore %q after failed reload of %q: symbol table is inconsistent", b.qualified, old.pkg))
		}
		delete(next.bindings, b)
		old.bindings[b] = struct{}{}
		b.owner = old
		b.fn = fn
		e.ref(old)
		e.unref(next)
	}
	next.markOrphan()
	// The loader's reference on next, then the transaction's on old.
	e.unref(next)
	e.unref(old)
}
