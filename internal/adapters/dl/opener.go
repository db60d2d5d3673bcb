//go:build darwin || freebsd || linux || netbsd

// Package dl loads shared objects through the platform dynamic loader.
//
// Extension entry points use the C calling convention
//
//	int64_t name(const char *req, size_t req_len, char *out, size_t out_cap);
//
// where a non-negative return is the number of response bytes written to
// out and a negative return reports failure. The extension has no channel
// for a structured diagnostic across this boundary, so a negative return
// surfaces as a generic call failure.
package dl

import (
	"github.com/ebitengine/purego"
	"github.com/quilldb/quill/internal/core/domain"
	"github.com/quilldb/quill/internal/core/ports"
	"go.trai.ch/zerr"
)

// responseCap bounds a single extension response.
const responseCap = 1 << 20

var _ ports.ImageOpener = (*Opener)(nil)

// Opener implements ports.ImageOpener over dlopen/dlsym/dlclose.
type Opener struct{}

// NewOpener creates an Opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open loads the shared object at path. RTLD_LOCAL keeps extension symbols
// out of the global namespace so two versions of one extension can coexist.
func (*Opener) Open(path string) (ports.Image, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "dlopen failed"), "path", path)
	}
	return &image{handle: handle}, nil
}

type image struct {
	handle uintptr
}

func (im *image) Lookup(symbol string) (domain.ExtensionFunc, error) {
	addr, err := purego.Dlsym(im.handle, symbol)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "dlsym failed"), "symbol", symbol)
	}

	var raw func(req *byte, reqLen uintptr, out *byte, outCap uintptr) int64
	purego.RegisterFunc(&raw, addr)

	fn := func(req []byte, out *domain.Sink) bool {
		buf := make([]byte, responseCap)
		var reqPtr *byte
		if len(req) > 0 {
			reqPtr = &req[0]
		}
		n := raw(reqPtr, uintptr(len(req)), &buf[0], uintptr(len(buf)))
		if n < 0 {
			return false
		}
		if n > int64(len(buf)) {
			n = int64(len(buf))
		}
		_, _ = out.Write(buf[:n])
		return true
	}
	return fn, nil
}

func (im *image) Close() error {
	if err := purego.Dlclose(im.handle); err != nil {
		return zerr.Wrap(err, "dlclose failed")
	}
	return nil
}
