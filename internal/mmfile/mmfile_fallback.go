//go:build !unix

package mmfile

import "os"

// Map reads the entire file when mmap is not available. Read-write mappings
// cannot be emulated faithfully, so ReadWrite reports ErrUnsupported and the
// caller falls back to owned storage.
func Map(path string, mode Mode) (*Mapping, error) {
	if mode == ReadWrite {
		return nil, ErrUnsupported
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Mapping{data: data}, nil
}
