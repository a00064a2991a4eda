package ply

import (
	"encoding/binary"

	"github.com/joshuapare/plykit/internal/buf"
)

// mappedTable is a row table backed by a fixed-layout region of a mapped
// file: count rows of rowSize bytes each, fields packed in property order
// in the file's byte order. Elements promoted via a known list length carry
// their validated per-property list lengths in listLens.
type mappedTable struct {
	raw      []byte // count * rowSize bytes
	order    binary.ByteOrder
	writable bool
	rowSize  int
	offsets  []int // per property: offset of the field (or length prefix) in a row
	listLens []int // per property: promoted list length, 0 for scalar properties
}

// scalarOff returns the byte offset of property pi in row i.
func (m *mappedTable) scalarOff(pi, i int) int {
	return i*m.rowSize + m.offsets[pi]
}

func (m *mappedTable) bitsAt(pi, i int, width int) uint64 {
	return buf.Uint(m.raw[m.scalarOff(pi, i):], width, m.order)
}

func (m *mappedTable) setBits(pi, i int, width int, bits uint64) {
	buf.PutUint(m.raw[m.scalarOff(pi, i):], bits, width, m.order)
}

// listValueOff returns the byte offset of value j of list property pi in
// row i, past the length prefix.
func (m *mappedTable) listValueOff(pi, i, j int, lenWidth, valWidth int) int {
	return i*m.rowSize + m.offsets[pi] + lenWidth + j*valWidth
}

func (m *mappedTable) listBitsAt(pi, i, j int, lenWidth, valWidth int) uint64 {
	return buf.Uint(m.raw[m.listValueOff(pi, i, j, lenWidth, valWidth):], valWidth, m.order)
}

func (m *mappedTable) setListBits(pi, i, j int, lenWidth, valWidth int, bits uint64) {
	buf.PutUint(m.raw[m.listValueOff(pi, i, j, lenWidth, valWidth):], bits, valWidth, m.order)
}

// mappedLayout computes the per-row layout of a fixed-layout (possibly
// promoted) element: field offsets, list lengths, and the row size.
// knownLens is keyed by property name and may be nil for truly fixed
// layouts.
func mappedLayout(props []Property, knownLens map[string]int) (offsets, listLens []int, rowSize int) {
	offsets = make([]int, len(props))
	listLens = make([]int, len(props))
	for i, p := range props {
		offsets[i] = rowSize
		if p.IsList() {
			k := knownLens[p.Name]
			listLens[i] = k
			rowSize += p.LenType.ByteWidth() + k*p.Type.ByteWidth()
		} else {
			rowSize += p.Type.ByteWidth()
		}
	}
	return offsets, listLens, rowSize
}
