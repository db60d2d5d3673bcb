package modcache_test

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quilldb/quill/internal/core/domain"
	"github.com/quilldb/quill/internal/core/ports"
	"github.com/quilldb/quill/internal/engine/modcache"
)

// fakeLib is a shared object on the fake disk: an identity snapshot plus
// the symbol table the image exposes once opened.
type fakeLib struct {
	ident   domain.FileIdentity
	syms    map[string]domain.ExtensionFunc
	openErr error
}

// fakeDisk maps file paths (including staged copies) to their contents.
type fakeDisk struct {
	mu   sync.Mutex
	libs map[string]*fakeLib
}

func (d *fakeDisk) get(path string) *fakeLib {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.libs[path]
}

func (d *fakeDisk) put(path string, lib *fakeLib) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.libs[path] = lib
}

type fakeResolver struct {
	paths map[string]string
}

func (r *fakeResolver) Resolve(pkg string) (string, error) {
	path, ok := r.paths[pkg]
	if !ok {
		return "", errors.New("no shared object for " + pkg)
	}
	return path, nil
}

// fakeStager hands out staged paths that alias the source lib as it exists
// at stage time, so a later rewrite of the source does not alter images
// already loaded from a staged copy. An optional gate runs before the copy
// so tests can park a staging in flight.
type fakeStager struct {
	disk     *fakeDisk
	stages   atomic.Int32
	cleanups atomic.Int32
	gate     func(pkg string)
}

func (s *fakeStager) Identity(path string) (domain.FileIdentity, error) {
	lib := s.disk.get(path)
	if lib == nil {
		return domain.FileIdentity{}, errors.New("stat " + path + ": no such file")
	}
	return lib.ident, nil
}

func (s *fakeStager) Stage(path, pkg string) (*domain.StagedImage, error) {
	if s.gate != nil {
		s.gate(pkg)
	}
	lib := s.disk.get(path)
	if lib == nil {
		return nil, errors.New("stage " + path + ": no such file")
	}
	n := s.stages.Add(1)
	staged := fmt.Sprintf("%s#staged-%d", path, n)
	s.disk.put(staged, lib)
	return &domain.StagedImage{
		Path:     staged,
		Checksum: uint64(n),
		Cleanup:  func() { s.cleanups.Add(1) },
	}, nil
}

// fakeOpener is the instrumented dynamic-load primitive: it counts opens
// and closes and flags double-closes.
type fakeOpener struct {
	disk   *fakeDisk
	opens  atomic.Int32
	closes atomic.Int32
}

func (o *fakeOpener) Open(path string) (ports.Image, error) {
	lib := o.disk.get(path)
	if lib == nil {
		return nil, errors.New("dlopen " + path + ": no such file")
	}
	if lib.openErr != nil {
		return nil, lib.openErr
	}
	o.opens.Add(1)
	return &fakeImage{opener: o, lib: lib}, nil
}

type fakeImage struct {
	opener *fakeOpener
	lib    *fakeLib
	closed atomic.Bool
}

func (im *fakeImage) Lookup(symbol string) (domain.ExtensionFunc, error) {
	fn, ok := im.lib.syms[symbol]
	if !ok {
		return nil, errors.New("undefined symbol: " + symbol)
	}
	return fn, nil
}

func (im *fakeImage) Close() error {
	if im.closed.Swap(true) {
		return errors.New("image closed twice")
	}
	im.opener.closes.Add(1)
	return nil
}

type memLogger struct {
	mu    sync.Mutex
	infos []string
	warns []string
	errs  []error
}

func (l *memLogger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *memLogger) Warn(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *memLogger) Error(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, err)
}

func (l *memLogger) warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warns...)
}

// harness wires an Engine to the fake disk, stager and opener.
type harness struct {
	disk     *fakeDisk
	resolver *fakeResolver
	stager   *fakeStager
	opener   *fakeOpener
	log      *memLogger
	engine   *modcache.Engine
}

func newHarness() *harness {
	disk := &fakeDisk{libs: make(map[string]*fakeLib)}
	h := &harness{
		disk:     disk,
		resolver: &fakeResolver{paths: make(map[string]string)},
		stager:   &fakeStager{disk: disk},
		opener:   &fakeOpener{disk: disk},
		log:      &memLogger{},
	}
	h.engine = modcache.New(h.resolver, h.stager, h.opener, h.log)
	return h
}

// addLib places a shared object for pkg on the fake disk and registers its
// search path.
func (h *harness) addLib(pkg string, gen int, syms map[string]domain.ExtensionFunc) string {
	path := "/ext/" + pkg + ".so"
	h.resolver.paths[pkg] = path
	h.disk.put(path, &fakeLib{ident: identity(gen), syms: syms})
	return path
}

// identity builds a distinct file identity per generation.
func identity(gen int) domain.FileIdentity {
	return domain.FileIdentity{
		Device:  1,
		Inode:   42,
		Size:    int64(1024 + gen),
		ModTime: time.Unix(1700000000+int64(gen), 0),
	}
}

// adder returns an entry point summing the request bytes into a one-byte
// response, scaled by factor so tests can tell extension versions apart.
func adder(factor byte) domain.ExtensionFunc {
	return func(req []byte, out *domain.Sink) bool {
		var sum byte
		for _, b := range req {
			sum += b
		}
		_, _ = out.Write([]byte{sum * factor})
		return true
	}
}
