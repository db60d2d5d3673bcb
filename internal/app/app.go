// Package app implements the application layer for quill.
package app

import (
	"fmt"
	"sync"

	"github.com/quilldb/quill/internal/core/domain"
	"github.com/quilldb/quill/internal/core/ports"
	"github.com/quilldb/quill/internal/engine/modcache"
	"go.trai.ch/zerr"
)

// App represents the main application logic. It owns the function
// bindings handed out to callers and the set of explicitly loaded
// packages, and keeps the manifest in sync with the latter so a
// restart can restore them.
type App struct {
	engine   *modcache.Engine
	manifest ports.ManifestStore
	cfg      *domain.Config
	log      ports.Logger

	mu       sync.Mutex
	registry map[string]*modcache.Binding
	resident map[string]*modcache.Module
}

// New creates a new App instance.
func New(engine *modcache.Engine, manifest ports.ManifestStore, cfg *domain.Config, log ports.Logger) *App {
	return &App{
		engine:   engine,
		manifest: manifest,
		cfg:      cfg,
		log:      log,
		registry: make(map[string]*modcache.Binding),
		resident: make(map[string]*modcache.Module),
	}
}

// Boot restores the packages recorded in the manifest and resolves the
// configured preload functions. A package that fails to restore is
// logged and skipped so one missing shared object does not keep the
// server down.
func (a *App) Boot() error {
	pkgs, err := a.manifest.Packages()
	if err != nil {
		return zerr.Wrap(err, "failed to read manifest")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, pkg := range pkgs {
		m, err := a.engine.Load(pkg)
		if err != nil {
			a.log.Warn(fmt.Sprintf("skipping manifest package %q: %v", pkg, err))
			continue
		}
		a.resident[pkg] = m
	}

	for _, name := range a.cfg.Preload {
		b, err := a.engine.ResolveAndBind(name)
		if err != nil {
			a.log.Warn(fmt.Sprintf("skipping preload function %q: %v", name, err))
			continue
		}
		a.registry[name] = b
	}

	return nil
}

// Call invokes the extension function with the given qualified name,
// binding it on first use. The binding is kept for subsequent calls.
func (a *App) Call(qualified string, req []byte) ([]byte, error) {
	a.mu.Lock()
	b, ok := a.registry[qualified]
	if !ok {
		var err error
		b, err = a.engine.ResolveAndBind(qualified)
		if err != nil {
			a.mu.Unlock()
			return nil, err
		}
		a.registry[qualified] = b
	}
	a.mu.Unlock()

	return a.engine.Call(b, req)
}

// LoadPackage loads a package explicitly and records it in the
// manifest. Loading an already resident package revalidates it against
// the backing file and replaces the resident handle.
func (a *App) LoadPackage(pkg string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	m, err := a.engine.Load(pkg)
	if err != nil {
		return err
	}
	if prev, ok := a.resident[pkg]; ok {
		a.engine.Unload(prev)
	}
	a.resident[pkg] = m

	if err := a.manifest.Add(pkg); err != nil {
		return zerr.Wrap(err, "failed to record package in manifest")
	}
	return nil
}

// UnloadPackage releases an explicitly loaded package and removes it
// from the manifest. Functions bound from the package stay callable
// until they are themselves released.
func (a *App) UnloadPackage(pkg string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	m, ok := a.resident[pkg]
	if !ok {
		return zerr.With(domain.ErrModuleNotFound, "package", pkg)
	}
	a.engine.Unload(m)
	delete(a.resident, pkg)

	if err := a.manifest.Remove(pkg); err != nil {
		return zerr.Wrap(err, "failed to remove package from manifest")
	}
	return nil
}

// Reload atomically swaps a package for the current contents of its
// backing file, migrating every binding.
func (a *App) Reload(pkg string) error {
	return a.engine.Reload(pkg)
}

// Release drops the retained binding for a qualified function name.
func (a *App) Release(qualified string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, ok := a.registry[qualified]
	if !ok {
		return zerr.With(domain.ErrFunctionNotFound, "name", qualified)
	}
	a.engine.Unbind(b)
	delete(a.registry, qualified)
	return nil
}

// Close releases every binding and resident package and shuts the
// engine down.
func (a *App) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for name, b := range a.registry {
		a.engine.Unbind(b)
		delete(a.registry, name)
	}
	for pkg, m := range a.resident {
		a.engine.Unload(m)
		delete(a.resident, pkg)
	}
	a.engine.Shutdown()
}
