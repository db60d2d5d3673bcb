//go:build unix

package fs

import (
	"os"
	"syscall"

	"github.com/quilldb/quill/internal/core/domain"
	"go.trai.ch/zerr"
)

// identityOf extracts the device and inode from the platform stat data.
func identityOf(fi os.FileInfo) (domain.FileIdentity, error) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return domain.FileIdentity{}, zerr.New("unsupported stat data for file identity")
	}
	return domain.FileIdentity{
		Device:  uint64(st.Dev), //nolint:unconvert // Dev is int32 on some platforms
		Inode:   st.Ino,
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
	}, nil
}
