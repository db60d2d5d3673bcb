// Package fs implements the filesystem adapters: extension path resolution
// and staged copies of shared objects.
package fs

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/quilldb/quill/internal/core/ports"
	"go.trai.ch/zerr"
)

// soSuffix is the shared-object file extension searched for.
const soSuffix = ".so"

var _ ports.PathResolver = (*SearchResolver)(nil)

// SearchResolver locates a package's shared object by scanning a fixed list
// of directories in order.
type SearchResolver struct {
	paths []string
}

// NewSearchResolver creates a SearchResolver over the given directories.
func NewSearchResolver(paths []string) *SearchResolver {
	return &SearchResolver{paths: paths}
}

// Resolve returns an absolute, canonicalized path to the first
// <dir>/<pkg>.so that exists.
func (r *SearchResolver) Resolve(pkg string) (string, error) {
	for _, dir := range r.paths {
		candidate := filepath.Join(dir, pkg+soSuffix)
		if _, err := os.Stat(candidate); err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				continue
			}
			return "", zerr.With(zerr.Wrap(err, "failed to stat candidate"), "path", candidate)
		}

		abs, err := filepath.Abs(candidate)
		if err != nil {
			return "", zerr.With(zerr.Wrap(err, "failed to absolutize path"), "path", candidate)
		}
		resolved, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return "", zerr.With(zerr.Wrap(err, "failed to canonicalize path"), "path", abs)
		}
		return resolved, nil
	}
	return "", zerr.With(zerr.New("no shared object found on search path"), "package", pkg)
}
