package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/quilldb/quill/internal/core/domain"
	"github.com/quilldb/quill/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/semaphore"
)

// maxConcurrentCopies bounds how many staging copies run at once.
const maxConcurrentCopies = 4

var _ ports.Stager = (*Stager)(nil)

// Stager stages private copies of shared objects under uniquely named
// temporary directories. The byte copy runs on a small bounded pool so a
// burst of loads cannot saturate the process with blocking I/O; the calling
// goroutine waits for its copy to complete.
type Stager struct {
	tmpRoot string
	pool    *semaphore.Weighted
	log     ports.Logger
}

// NewStager creates a Stager. tmpRoot of "" means the system temp directory.
func NewStager(tmpRoot string, log ports.Logger) *Stager {
	return &Stager{
		tmpRoot: tmpRoot,
		pool:    semaphore.NewWeighted(maxConcurrentCopies),
		log:     log,
	}
}

// Identity captures the identity snapshot of the file at path.
func (s *Stager) Identity(path string) (domain.FileIdentity, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return domain.FileIdentity{}, zerr.With(zerr.Wrap(err, "failed to stat file"), "path", path)
	}
	return identityOf(fi)
}

// Stage copies the file at path into a fresh temporary directory under a
// file named after pkg, preserving permission bits. A copy shorter than the
// source is an error and leaves nothing behind.
func (s *Stager) Stage(path, pkg string) (*domain.StagedImage, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to stat file"), "path", path)
	}

	dir, err := os.MkdirTemp(s.tmpRoot, "quill-*")
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create staging directory")
	}

	staged := filepath.Join(dir, pkg+soSuffix)
	sum, copied, err := s.copyPooled(path, staged, fi.Mode().Perm())
	if err != nil {
		s.removeStaging(dir, staged)
		return nil, zerr.With(zerr.Wrap(err, "failed to stage copy"), "path", path)
	}
	if copied != fi.Size() {
		s.removeStaging(dir, staged)
		return nil, zerr.With(zerr.With(zerr.New("short copy while staging"), "path", path), "copied", copied)
	}

	return &domain.StagedImage{
		Path:     staged,
		Checksum: sum,
		Cleanup:  func() { s.removeStaging(dir, staged) },
	}, nil
}

// removeStaging is best effort; failures are logged, never surfaced.
func (s *Stager) removeStaging(dir, staged string) {
	if err := os.Remove(staged); err != nil && !os.IsNotExist(err) {
		s.log.Warn(fmt.Sprintf("failed to remove staged copy %s: %v", staged, err))
	}
	if err := os.Remove(dir); err != nil {
		s.log.Warn(fmt.Sprintf("failed to remove staging directory %s: %v", dir, err))
	}
}

// copyPooled runs the byte copy on the bounded blocking-I/O pool.
func (s *Stager) copyPooled(src, dst string, perm os.FileMode) (uint64, int64, error) {
	if err := s.pool.Acquire(context.Background(), 1); err != nil {
		return 0, 0, zerr.Wrap(err, "failed to acquire copy slot")
	}
	defer s.pool.Release(1)
	return copyFile(src, dst, perm)
}

// copyFile copies src to dst verbatim, returning the xxhash of the bytes
// and the byte count written.
func copyFile(src, dst string, perm os.FileMode) (uint64, int64, error) {
	in, err := os.Open(src) //nolint:gosec // Path comes from the path resolver
	if err != nil {
		return 0, 0, zerr.Wrap(err, "failed to open source")
	}
	defer in.Close() //nolint:errcheck // Read-only file

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm) //nolint:gosec // Fresh path under our own temp dir
	if err != nil {
		return 0, 0, zerr.Wrap(err, "failed to open staged file")
	}

	digest := xxhash.New()
	n, err := io.Copy(io.MultiWriter(out, digest), in)
	cerr := out.Close()
	if err != nil {
		return 0, n, zerr.Wrap(err, "failed to copy bytes")
	}
	if cerr != nil {
		return 0, n, zerr.Wrap(cerr, "failed to close staged file")
	}
	return digest.Sum64(), n, nil
}
