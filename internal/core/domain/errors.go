package domain

import "go.trai.ch/zerr"

var (
	// ErrModuleNotFound is returned when no shared object can be resolved
	// for a package name.
	ErrModuleNotFound = zerr.New("module not found")

	// ErrLoadFailed is returned when the platform loader rejects a staged image.
	ErrLoadFailed = zerr.New("failed to load module")

	// ErrFunctionNotFound is returned when a symbol is absent from an
	// otherwise valid module.
	ErrFunctionNotFound = zerr.New("function not found")

	// ErrCallFailed is returned when an extension entry point reports
	// failure without attaching a diagnostic.
	ErrCallFailed = zerr.New("extension call failed")
)
