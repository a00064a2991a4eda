// Package buf contains helpers for endian-safe scalar decoding and encoding.
package buf

import "encoding/binary"

// Uint reads an unsigned integer of the given byte width from b using order.
// Widths 1, 2, 4 and 8 are supported; b must hold at least width bytes.
func Uint(b []byte, width int, order binary.ByteOrder) uint64 {
	switch width {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(order.Uint16(b))
	case 4:
		return uint64(order.Uint32(b))
	case 8:
		return order.Uint64(b)
	default:
		panic("buf: unsupported scalar width")
	}
}

// PutUint writes the low width bytes of v into b using order.
func PutUint(b []byte, v uint64, width int, order binary.ByteOrder) {
	switch width {
	case 1:
		b[0] = byte(v)
	case 2:
		order.PutUint16(b, uint16(v))
	case 4:
		order.PutUint32(b, uint32(v))
	case 8:
		order.PutUint64(b, v)
	default:
		panic("buf: unsupported scalar width")
	}
}

// Swap reverses the bytes of every width-sized field in b in place.
// len(b) must be a multiple of width.
func Swap(b []byte, width int) {
	if width <= 1 {
		return
	}
	for off := 0; off < len(b); off += width {
		for i, j := off, off+width-1; i < j; i, j = i+1, j-1 {
			b[i], b[j] = b[j], b[i]
		}
	}
}

// NativeIsLittle reports whether the host stores integers little-endian.
func NativeIsLittle() bool {
	return nativeLittle
}

var nativeLittle = func() bool {
	var probe [2]byte
	binary.NativeEndian.PutUint16(probe[:], 1)
	return probe[0] == 1
}()
