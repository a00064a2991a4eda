//go:build unix

package mmfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMapReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probe.bin")
	want := []byte("ply\nformat binary_little_endian 1.0\n")
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Map(path, ReadOnly)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if m.Writable() {
		t.Fatalf("read-only mapping reports writable")
	}
	if string(m.Bytes()) != string(want) {
		t.Fatalf("mapped bytes mismatch")
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second Close must be a no-op: %v", err)
	}
}

func TestMapReadWriteFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probe.bin")
	if err := os.WriteFile(path, make([]byte, 16), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Map(path, ReadWrite)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if !m.Writable() {
		t.Fatalf("read-write mapping reports read-only")
	}
	copy(m.Bytes(), "mutated")
	if err := m.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got[:7]) != "mutated" {
		t.Fatalf("flushed bytes not visible in file: %q", got)
	}
}

func TestMapMissingFile(t *testing.T) {
	if _, err := Map(filepath.Join(t.TempDir(), "absent.ply"), ReadOnly); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
