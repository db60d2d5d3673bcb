package domain

import "bytes"

// ExtensionFunc is the calling convention for a resolved extension entry
// point. The request payload is an opaque byte buffer; the response is
// written to out. The return value reports success. A failing entry point
// should attach a diagnostic with Sink.Fail; when it does not, the caller
// synthesizes a generic call failure.
type ExtensionFunc func(req []byte, out *Sink) bool

// Sink collects the response bytes and the optional diagnostic produced by
// one extension call.
type Sink struct {
	buf bytes.Buffer
	err error
}

// Write appends response bytes. It never fails.
func (s *Sink) Write(p []byte) (int, error) {
	return s.buf.Write(p)
}

// Fail records the diagnostic reported by the extension.
func (s *Sink) Fail(err error) {
	s.err = err
}

// Bytes returns the response written so far.
func (s *Sink) Bytes() []byte {
	return s.buf.Bytes()
}

// Err returns the diagnostic recorded by Fail, if any.
func (s *Sink) Err() error {
	return s.err
}
