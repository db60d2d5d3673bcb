package domain

// StagedImage is a private on-disk copy of a shared object, placed under a
// uniquely named directory so the platform loader cannot deduplicate it
// against a previously loaded image of the same file.
type StagedImage struct {
	// Path of the staged copy, named after the package.
	Path string

	// Checksum of the copied bytes.
	Checksum uint64

	// Cleanup removes the staged copy and its directory. Best effort:
	// failures are logged by the stager, never surfaced to the caller.
	Cleanup func()
}
