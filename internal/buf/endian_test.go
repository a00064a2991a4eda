package buf

import (
	"encoding/binary"
	"testing"
)

func TestUintWidths(t *testing.T) {
	b := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	if got := Uint(b, 1, binary.LittleEndian); got != 0x01 {
		t.Fatalf("width 1: got %#x", got)
	}
	if got := Uint(b, 2, binary.LittleEndian); got != 0x0201 {
		t.Fatalf("width 2 LE: got %#x", got)
	}
	if got := Uint(b, 2, binary.BigEndian); got != 0x0102 {
		t.Fatalf("width 2 BE: got %#x", got)
	}
	if got := Uint(b, 4, binary.BigEndian); got != 0x01020304 {
		t.Fatalf("width 4 BE: got %#x", got)
	}
	if got := Uint(b, 8, binary.LittleEndian); got != 0x0807060504030201 {
		t.Fatalf("width 8 LE: got %#x", got)
	}
}

func TestPutUintRoundTrip(t *testing.T) {
	for _, width := range []int{1, 2, 4, 8} {
		for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
			b := make([]byte, width)
			v := uint64(0x0807060504030201) & (1<<(8*uint(width)) - 1)
			if width == 8 {
				v = 0x0807060504030201
			}
			PutUint(b, v, width, order)
			if got := Uint(b, width, order); got != v {
				t.Fatalf("width %d: got %#x want %#x", width, got, v)
			}
		}
	}
}

func TestSwap(t *testing.T) {
	b := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	Swap(b, 4)
	want := []byte{0x04, 0x03, 0x02, 0x01, 0x08, 0x07, 0x06, 0x05}
	for i := range b {
		if b[i] != want[i] {
			t.Fatalf("after swap: %v", b)
		}
	}
	Swap(b, 1) // no-op
	if b[0] != 0x04 {
		t.Fatalf("width-1 swap must not move bytes")
	}
}

func TestNativeProbeMatchesEncoding(t *testing.T) {
	var probe [4]byte
	binary.NativeEndian.PutUint32(probe[:], 0x11223344)
	little := probe[0] == 0x44
	if little != NativeIsLittle() {
		t.Fatalf("NativeIsLittle disagrees with encoding/binary")
	}
}
