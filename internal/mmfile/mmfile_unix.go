//go:build unix

package mmfile

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Map maps the file at path into memory with the requested mode.
func Map(path string, mode Mode) (*Mapping, error) {
	flags := os.O_RDONLY
	if mode == ReadWrite {
		flags = os.O_RDWR
	}
	f, err := os.OpenFile(path, flags, 0)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	size := info.Size()
	if size == 0 {
		_ = f.Close()
		return nil, fmt.Errorf("mmfile: empty file: %s", path)
	}
	if size > int64(^uint(0)>>1) {
		_ = f.Close()
		return nil, fmt.Errorf("mmfile: file too large to map (%d bytes)", size)
	}

	prot := unix.PROT_READ
	if mode == ReadWrite {
		prot |= unix.PROT_WRITE
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), prot, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mmfile: mmap failed: %w", err)
	}

	m := &Mapping{
		data:     data,
		writable: mode == ReadWrite,
	}
	m.flusher = func() error {
		if err := unix.Msync(data, unix.MS_SYNC); err != nil {
			return fmt.Errorf("mmfile: msync: %w", err)
		}
		return nil
	}
	m.closer = func() error {
		err := unix.Munmap(data)
		if errors.Is(err, unix.EINVAL) {
			// Treat double-unmap as no-op for callers.
			err = nil
		}
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		return err
	}
	return m, nil
}
