package ply

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/joshuapare/plykit/internal/buf"
)

// binReader feeds the binary body codec from either a stream or a byte
// slice. Slice mode is used for mapped files: next returns zero-copy
// subslices there, which is what lets fixed-layout regions be exposed as
// mapped row tables.
type binReader struct {
	br      *bufio.Reader // stream mode
	data    []byte        // slice mode
	pos     int64
	scratch [8]byte
}

func newStreamBinReader(br *bufio.Reader) *binReader { return &binReader{br: br} }

func newSliceBinReader(data []byte, pos int64) *binReader {
	return &binReader{data: data, pos: pos}
}

func (r *binReader) sliceMode() bool { return r.data != nil }

// next consumes and returns the upcoming n bytes.
func (r *binReader) next(n int64) ([]byte, error) {
	if r.data != nil {
		if r.pos+n > int64(len(r.data)) {
			return nil, io.ErrUnexpectedEOF
		}
		b := r.data[r.pos : r.pos+n]
		r.pos += n
		return b, nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r.br, b); err != nil {
		return nil, err
	}
	r.pos += n
	return b, nil
}

// field consumes one fixed-width field, reusing an internal scratch buffer
// in stream mode.
func (r *binReader) field(width int) ([]byte, error) {
	if r.data != nil {
		return r.next(int64(width))
	}
	b := r.scratch[:width]
	if _, err := io.ReadFull(r.br, b); err != nil {
		return nil, err
	}
	r.pos += int64(width)
	return b, nil
}

func readErr(e *Element, row int, prop string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errBodyf(ErrBody, e.name, row, prop, "unexpected end of input")
	}
	return ioError(e.name, row, err)
}

// decodeBinaryElement decodes one element body. known holds the caller's
// known list lengths for this element, or nil. canMap permits exposing a
// fixed-layout region of a slice-mode reader as a mapped row table.
func decodeBinaryElement(r *binReader, e *Element, order binary.ByteOrder, known map[string]int, canMap, mapWritable bool) error {
	if e.FixedLayout() {
		return decodeFixed(r, e, order, nil, canMap, mapWritable)
	}
	if coversAllLists(e, known) {
		return decodeFixed(r, e, order, known, canMap, mapWritable)
	}
	// Ragged elements are never mapped.
	return decodeRagged(r, e, order)
}

// coversAllLists reports whether known supplies a length for every list
// property of e. Partial coverage skips the promotion silently.
func coversAllLists(e *Element, known map[string]int) bool {
	if known == nil {
		return false
	}
	for _, p := range e.props {
		if p.IsList() {
			if k, ok := known[p.Name]; !ok || k <= 0 {
				return false
			}
		}
	}
	return true
}

// decodeFixed is the bulk path: one contiguous read of count*rowSize bytes.
// With known lengths, every list length prefix is validated against the
// promised length before the data is exposed.
func decodeFixed(r *binReader, e *Element, order binary.ByteOrder, known map[string]int, canMap, mapWritable bool) error {
	offsets, listLens, rowSize := mappedLayout(e.props, known)
	span := int64(e.count) * int64(rowSize)
	if rowSize > 0 && span/int64(rowSize) != int64(e.count) {
		return errBodyf(ErrBody, e.name, -1, "", "element body size overflows")
	}

	raw, err := r.next(span)
	if err != nil {
		return readErr(e, -1, "", err)
	}

	if known != nil {
		for i := 0; i < e.count; i++ {
			for pi, p := range e.props {
				if !p.IsList() {
					continue
				}
				lw := p.LenType.ByteWidth()
				bits := buf.Uint(raw[i*rowSize+offsets[pi]:], lw, order)
				k, err := listLenFromBits(p.LenType, bits)
				if err != nil {
					return annotate(err, e.name, i, p.Name)
				}
				if k != listLens[pi] {
					return errBodyf(ErrListLength, e.name, i, p.Name,
						"list length %d does not match known length %d", k, listLens[pi])
				}
			}
		}
	}

	if canMap && r.sliceMode() {
		e.mapped = &mappedTable{
			raw:      raw,
			order:    order,
			writable: mapWritable,
			rowSize:  rowSize,
			offsets:  offsets,
			listLens: listLens,
		}
		return nil
	}

	// Owned: scatter the row-major region into columnar storage,
	// swapping byte order per field as needed.
	for pi, p := range e.props {
		off := offsets[pi]
		if p.IsList() {
			k := listLens[pi]
			lw, vw := p.LenType.ByteWidth(), p.Type.ByteWidth()
			store := newListStore(p.Type, e.count)
			for i := 0; i < e.count; i++ {
				store.resizeRow(i, k)
				base := i*rowSize + off + lw
				for j := 0; j < k; j++ {
					store.setBits(i, j, buf.Uint(raw[base+j*vw:], vw, order))
				}
			}
			e.lists[pi] = store
			continue
		}
		w := p.Type.ByteWidth()
		store := newScalarStore(p.Type, e.count)
		for i := 0; i < e.count; i++ {
			store.setBits(i, buf.Uint(raw[i*rowSize+off:], w, order))
		}
		e.scalars[pi] = store
	}
	return nil
}

// decodeRagged is the per-row path for elements with list properties of
// unknown lengths.
func decodeRagged(r *binReader, e *Element, order binary.ByteOrder) error {
	for pi, p := range e.props {
		if p.IsList() {
			e.lists[pi] = newListStore(p.Type, e.count)
		} else {
			e.scalars[pi] = newScalarStore(p.Type, e.count)
		}
	}
	for i := 0; i < e.count; i++ {
		for pi, p := range e.props {
			if p.IsList() {
				lw, vw := p.LenType.ByteWidth(), p.Type.ByteWidth()
				fb, err := r.field(lw)
				if err != nil {
					return readErr(e, i, p.Name, err)
				}
				k, err := listLenFromBits(p.LenType, buf.Uint(fb, lw, order))
				if err != nil {
					return annotate(err, e.name, i, p.Name)
				}
				store := e.lists[pi]
				store.resizeRow(i, k)
				for j := 0; j < k; j++ {
					fb, err := r.field(vw)
					if err != nil {
						return readErr(e, i, p.Name, err)
					}
					store.setBits(i, j, buf.Uint(fb, vw, order))
				}
				continue
			}
			w := p.Type.ByteWidth()
			fb, err := r.field(w)
			if err != nil {
				return readErr(e, i, p.Name, err)
			}
			e.scalars[pi].setBits(i, buf.Uint(fb, w, order))
		}
	}
	return nil
}

// encodeBinaryBody renders the element body in the given byte order,
// casting storage values into the declared types field by field.
func encodeBinaryBody(b *bytes.Buffer, e *Element, order binary.ByteOrder) error {
	// A mapped table in the target byte order is already the exact body.
	if e.mapped != nil && e.mapped.order == order {
		b.Write(e.mapped.raw)
		return nil
	}

	if rowSize, ok := e.RowSize(); ok {
		// Bulk path for fixed layouts: assemble one row at a time.
		row := make([]byte, rowSize)
		for i := 0; i < e.count; i++ {
			off := 0
			for pi, p := range e.props {
				bits, err := e.declaredBits(pi, i)
				if err != nil {
					return annotate(err, e.name, i, p.Name)
				}
				w := p.Type.ByteWidth()
				buf.PutUint(row[off:], bits, w, order)
				off += w
			}
			b.Write(row)
		}
		return nil
	}

	var scratch [8]byte
	for i := 0; i < e.count; i++ {
		for pi, p := range e.props {
			if p.IsList() {
				k := e.listLen(pi, i)
				lenBits, err := int64ToBits(p.LenType, int64(k))
				if err != nil {
					return annotate(err, e.name, i, p.Name)
				}
				lw := p.LenType.ByteWidth()
				buf.PutUint(scratch[:], lenBits, lw, order)
				b.Write(scratch[:lw])
				vw := p.Type.ByteWidth()
				for j := 0; j < k; j++ {
					bits, err := e.declaredListBits(pi, i, j)
					if err != nil {
						return annotate(err, e.name, i, p.Name)
					}
					buf.PutUint(scratch[:], bits, vw, order)
					b.Write(scratch[:vw])
				}
				continue
			}
			bits, err := e.declaredBits(pi, i)
			if err != nil {
				return annotate(err, e.name, i, p.Name)
			}
			w := p.Type.ByteWidth()
			buf.PutUint(scratch[:], bits, w, order)
			b.Write(scratch[:w])
		}
	}
	return nil
}
