// Package mmfile provides platform-specific helpers for memory-mapping
// PLY files.
package mmfile

import "errors"

// Mode selects the access mode of a mapping.
type Mode int

const (
	// ReadOnly maps the file for reading; stores through the mapping fault.
	ReadOnly Mode = iota
	// ReadWrite maps the file shared read-write; stores reach the file
	// after Flush.
	ReadWrite
)

// ErrUnsupported indicates the platform cannot provide the requested mapping.
var ErrUnsupported = errors.New("mmfile: mapping mode not supported on this platform")

// Mapping is an open file mapping. The zero value is not usable; obtain one
// from Map. Close is idempotent.
type Mapping struct {
	data     []byte
	writable bool
	closer   func() error
	flusher  func() error
}

// Bytes returns the mapped contents. The slice is invalid after Close.
func (m *Mapping) Bytes() []byte { return m.data }

// Writable reports whether stores through Bytes reach the file.
func (m *Mapping) Writable() bool { return m.writable }

// Flush forces dirtied pages of a read-write mapping to the file.
// It is a no-op for read-only mappings.
func (m *Mapping) Flush() error {
	if m.flusher == nil || !m.writable {
		return nil
	}
	return m.flusher()
}

// Close releases the mapping. The bytes returned by Bytes must not be
// touched afterwards.
func (m *Mapping) Close() error {
	if m.closer == nil {
		return nil
	}
	err := m.closer()
	m.closer = nil
	m.flusher = nil
	m.data = nil
	return err
}
