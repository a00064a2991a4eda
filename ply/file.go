package ply

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/joshuapare/plykit/internal/buf"
	"github.com/joshuapare/plykit/internal/mmfile"
)

// Format is the ternary encoding declared on the header's format line.
type Format uint8

const (
	FormatASCII Format = iota
	FormatBinaryLittleEndian
	FormatBinaryBigEndian
)

func (f Format) String() string {
	switch f {
	case FormatASCII:
		return "ascii"
	case FormatBinaryLittleEndian:
		return "binary_little_endian"
	case FormatBinaryBigEndian:
		return "binary_big_endian"
	default:
		return "invalid"
	}
}

// Order names a byte order for the binary formats. OrderNative resolves to
// the host's order at write time.
type Order uint8

const (
	OrderNative Order = iota
	OrderLittle
	OrderBig
)

// File aggregates the elements of one PLY file together with its format,
// comments and obj_info. Files are produced by Read and Open, or built from
// scratch with New, NewElement and SetColumn.
//
// A File is not internally synchronized. Elements may be moved freely
// between files; the library claims no ownership discipline.
type File struct {
	text    bool
	order   Order
	version string

	comments []string
	objInfo  []string
	elements []*Element

	mapping *mmfile.Mapping
}

// New returns an empty file in binary native-order format.
func New() *File {
	return &File{version: "1.0"}
}

// Version returns the format version; always "1.0".
func (f *File) Version() string { return f.version }

// Text reports whether the file is in the ASCII format.
func (f *File) Text() bool { return f.text }

// SetText switches between the ASCII and binary formats. The byte order is
// untouched; it becomes meaningful again when text is false.
func (f *File) SetText(text bool) { f.text = text }

// ByteOrder returns the configured byte order. It is meaningful only for
// the binary formats.
func (f *File) ByteOrder() Order { return f.order }

// SetByteOrder sets the byte order used by the binary formats.
func (f *File) SetByteOrder(o Order) { f.order = o }

// Format returns the effective format, with a native byte order resolved to
// the host's.
func (f *File) Format() Format {
	if f.text {
		return FormatASCII
	}
	if f.resolveOrder() == OrderBig {
		return FormatBinaryBigEndian
	}
	return FormatBinaryLittleEndian
}

// SetFormat sets text and byte order in one step.
func (f *File) SetFormat(fm Format) {
	switch fm {
	case FormatASCII:
		f.text = true
	case FormatBinaryLittleEndian:
		f.text = false
		f.order = OrderLittle
	case FormatBinaryBigEndian:
		f.text = false
		f.order = OrderBig
	}
}

func (f *File) resolveOrder() Order {
	if f.order != OrderNative {
		return f.order
	}
	if buf.NativeIsLittle() {
		return OrderLittle
	}
	return OrderBig
}

func (f *File) byteOrder() binary.ByteOrder {
	if f.resolveOrder() == OrderBig {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Comments returns the container-scoped comments.
func (f *File) Comments() []string { return f.comments }

// SetComments replaces the container-scoped comments.
func (f *File) SetComments(comments []string) error {
	for _, c := range comments {
		if err := validateComment(c); err != nil {
			return err
		}
	}
	f.comments = comments
	return nil
}

// ObjInfo returns the obj_info lines.
func (f *File) ObjInfo() []string { return f.objInfo }

// SetObjInfo replaces the obj_info lines.
func (f *File) SetObjInfo(objInfo []string) error {
	for _, o := range objInfo {
		if err := validateComment(o); err != nil {
			return err
		}
	}
	f.objInfo = objInfo
	return nil
}

// Elements returns the element list in declaration order. The slice is a
// copy; the elements are shared.
func (f *File) Elements() []*Element {
	out := make([]*Element, len(f.elements))
	copy(out, f.elements)
	return out
}

// SetElements replaces the element list. Element names must be unique.
func (f *File) SetElements(elements []*Element) error {
	seen := make(map[string]bool, len(elements))
	for _, e := range elements {
		if e == nil {
			return errBodyf(ErrSchema, "", -1, "", "nil element")
		}
		if seen[e.name] {
			return errBodyf(ErrName, e.name, -1, "", "duplicate element name %q", e.name)
		}
		seen[e.name] = true
	}
	f.elements = elements
	return nil
}

// Element looks up an element by name.
func (f *File) Element(name string) (*Element, bool) {
	for _, e := range f.elements {
		if e.name == name {
			return e, true
		}
	}
	return nil, false
}

// Read parses a whole PLY file from r. The read is all-or-nothing: on any
// error no file is returned. ReadOptions.MemoryMap is ignored here; use
// Open for mapping.
func Read(r io.Reader, opts *ReadOptions) (*File, error) {
	lr := newLineReader(r)
	f, err := parseHeader(lr)
	if err != nil {
		return nil, err
	}
	if opts != nil {
		if err := validateKnown(f, opts.KnownListLen); err != nil {
			return nil, err
		}
	}
	if f.text {
		for _, e := range f.elements {
			if err := decodeASCIIBody(lr, e); err != nil {
				return nil, err
			}
		}
		return f, nil
	}
	br := newStreamBinReader(lr.br)
	for _, e := range f.elements {
		if err := decodeBinaryElement(br, e, f.byteOrder(), opts.knownFor(e.name), false, false); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Open reads the file at path. With ReadOptions.MemoryMap enabled the file
// is mapped and fixed-layout binary elements (including elements promoted
// by KnownListLen) are exposed as views of the mapping; everything else is
// decoded into owned storage. The mapping stays open until Close.
func Open(path string, opts *ReadOptions) (*File, error) {
	mode := MapOff
	if opts != nil {
		mode = opts.MemoryMap
	}
	if mode == MapOff {
		src, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer src.Close()
		return Read(src, opts)
	}

	mapMode := mmfile.ReadOnly
	if mode == MapReadWrite {
		mapMode = mmfile.ReadWrite
	}
	m, err := mmfile.Map(path, mapMode)
	if errors.Is(err, mmfile.ErrUnsupported) {
		// The platform cannot map in this mode; decode into owned storage.
		return Open(path, &ReadOptions{KnownListLen: opts.KnownListLen})
	}
	if err != nil {
		return nil, err
	}
	data := m.Bytes()

	lr := newLineReader(bytes.NewReader(data))
	f, err := parseHeader(lr)
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	if opts != nil {
		if err := validateKnown(f, opts.KnownListLen); err != nil {
			_ = m.Close()
			return nil, err
		}
	}

	if f.text {
		// Nothing to map in a text body.
		for _, e := range f.elements {
			if err := decodeASCIIBody(lr, e); err != nil {
				_ = m.Close()
				return nil, err
			}
		}
		_ = m.Close()
		return f, nil
	}

	// Writable views require the file's byte order to be native; a
	// read-only request opts into swap-on-access instead.
	fileLittle := f.resolveOrder() == OrderLittle
	orderNative := fileLittle == buf.NativeIsLittle()
	canMap := mode == MapReadOnly || orderNative
	writable := mode == MapReadWrite && orderNative

	r := newSliceBinReader(data, lr.consumed)
	for _, e := range f.elements {
		if err := decodeBinaryElement(r, e, f.byteOrder(), opts.knownFor(e.name), canMap, writable); err != nil {
			_ = m.Close()
			return nil, err
		}
	}

	for _, e := range f.elements {
		if e.mapped != nil {
			f.mapping = m
			return f, nil
		}
	}
	// No element ended up mapped; the mapping is not needed.
	_ = m.Close()
	return f, nil
}

// Write emits the header and every element body in container order. On
// error the sink may be left with a truncated file.
func (f *File) Write(w io.Writer) error {
	hdr, err := f.headerBytes()
	if err != nil {
		return err
	}
	for _, e := range f.elements {
		if missing := e.missingColumns(); len(missing) > 0 {
			return errBodyf(ErrSchema, e.name, -1, missing[0], "missing column for declared property")
		}
	}

	if _, err := w.Write(hdr); err != nil {
		return &ParseError{Msg: "write failed", Row: -1, cat: ErrIO, cause: err}
	}
	order := f.byteOrder()
	for _, e := range f.elements {
		var body bytes.Buffer
		if f.text {
			err = encodeASCIIBody(&body, e)
		} else {
			err = encodeBinaryBody(&body, e, order)
		}
		if err != nil {
			return err
		}
		if _, err := w.Write(body.Bytes()); err != nil {
			return &ParseError{Msg: "write failed", Element: e.name, Row: -1, cat: ErrIO, cause: err}
		}
	}
	return nil
}

// WriteFile renders the file and writes it to path atomically: the bytes go
// to a temp file in the same directory, which replaces path only after a
// successful sync. A failed render never touches path.
func (f *File) WriteFile(path string) error {
	var b bytes.Buffer
	if err := f.Write(&b); err != nil {
		return err
	}
	if err := writeFileAtomic(path, b.Bytes()); err != nil {
		return &ParseError{Msg: "write failed", Row: -1, cat: ErrIO, cause: err}
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".plykit-tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmpPath, path)
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// Flush forces stores made through read-write mapped columns to the
// underlying file. It is a no-op without a writable mapping.
func (f *File) Flush() error {
	if f.mapping == nil {
		return nil
	}
	if err := f.mapping.Flush(); err != nil {
		return &ParseError{Msg: "flush failed", Row: -1, cat: ErrIO, cause: err}
	}
	return nil
}

// Close releases the mapping backing any mapped row tables. Mapped columns
// must not be accessed afterwards; call Detach on an element first to keep
// its data. Close is idempotent and a no-op for unmapped files.
func (f *File) Close() error {
	if f.mapping == nil {
		return nil
	}
	err := f.mapping.Close()
	f.mapping = nil
	return err
}
