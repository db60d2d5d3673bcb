package domain

import "time"

// FileIdentity is the identity snapshot of a shared-object file, captured
// when the file is loaded. A cached module is stale once any field no
// longer matches a fresh snapshot of its backing path.
type FileIdentity struct {
	Device  uint64
	Inode   uint64
	Size    int64
	ModTime time.Time
}

// Equal reports whether both snapshots describe the same file state.
func (id FileIdentity) Equal(other FileIdentity) bool {
	return id.Device == other.Device &&
		id.Inode == other.Inode &&
		id.Size == other.Size &&
		id.ModTime.Equal(other.ModTime)
}
