package ply

import "fmt"

// Backing reports how an element's row table is stored.
type Backing int

const (
	// BackingOwned is the typical case: columns live in process memory.
	BackingOwned Backing = iota
	// BackingMappedReadOnly exposes a read-only view of the mapped file.
	BackingMappedReadOnly
	// BackingMappedReadWrite exposes a writable view of the mapped file;
	// stores become durable after File.Flush.
	BackingMappedReadWrite
)

// Element is a named table of identically-schemaed rows: an ordered property
// sequence, a row count, per-element comments, and the row data.
//
// Elements are not internally synchronized, and the library claims no
// ownership discipline: an element installed into two containers is mutated
// through both.
type Element struct {
	name     string
	count    int
	props    []Property
	byName   map[string]int
	comments []string

	scalars []scalarStore // per property, scalar properties only
	lists   []listStore   // per property, list properties only
	extras  map[string]*Column
	mapped  *mappedTable
}

// NewElement constructs an element from a caller-provided schema. Columns
// are installed afterwards with SetColumn. An element needs at least one
// property and a non-negative count.
func NewElement(name string, props []Property, count int) (*Element, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if len(props) == 0 {
		return nil, errBodyf(ErrSchema, name, -1, "", "element has no properties")
	}
	if count < 0 {
		return nil, errBodyf(ErrSchema, name, -1, "", "negative count %d", count)
	}
	e := newElement(name, count)
	for _, p := range props {
		if err := p.validate(); err != nil {
			return nil, err
		}
		if err := e.addProperty(p); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func newElement(name string, count int) *Element {
	return &Element{
		name:   name,
		count:  count,
		byName: make(map[string]int),
	}
}

func (e *Element) addProperty(p Property) error {
	if _, dup := e.byName[p.Name]; dup {
		return errBodyf(ErrSchema, e.name, -1, p.Name, "duplicate property name")
	}
	e.byName[p.Name] = len(e.props)
	e.props = append(e.props, p)
	e.scalars = append(e.scalars, nil)
	e.lists = append(e.lists, nil)
	return nil
}

// Name returns the element name.
func (e *Element) Name() string { return e.name }

// Count returns the number of rows.
func (e *Element) Count() int { return e.count }

// Len is an alias for Count.
func (e *Element) Len() int { return e.count }

// Properties returns a copy of the property sequence.
func (e *Element) Properties() []Property {
	out := make([]Property, len(e.props))
	copy(out, e.props)
	return out
}

// Comments returns the element's comments.
func (e *Element) Comments() []string { return e.comments }

// SetComments replaces the element's comments. Comments must not contain
// newlines.
func (e *Element) SetComments(comments []string) error {
	for _, c := range comments {
		if err := validateComment(c); err != nil {
			return err
		}
	}
	e.comments = comments
	return nil
}

// Contains reports whether a column with the given name exists, declared or
// extra.
func (e *Element) Contains(name string) bool {
	if _, ok := e.byName[name]; ok {
		return true
	}
	_, ok := e.extras[name]
	return ok
}

// FixedLayout reports whether every property is a scalar property, i.e.
// every row occupies the same number of bytes on disk.
func (e *Element) FixedLayout() bool {
	for _, p := range e.props {
		if p.IsList() {
			return false
		}
	}
	return true
}

// RowSize returns the on-disk byte size of one row, or false for a ragged
// element.
func (e *Element) RowSize() (int64, bool) {
	if !e.FixedLayout() {
		return 0, false
	}
	var size int64
	for _, p := range e.props {
		w, _ := p.fixedWidth()
		size += int64(w)
	}
	return size, true
}

// Backing reports how the row table is stored.
func (e *Element) Backing() Backing {
	switch {
	case e.mapped == nil:
		return BackingOwned
	case e.mapped.writable:
		return BackingMappedReadWrite
	default:
		return BackingMappedReadOnly
	}
}

// Column returns a typed view over the named column.
func (e *Element) Column(name string) (*Column, error) {
	if pi, ok := e.byName[name]; ok {
		p := e.props[pi]
		c := &Column{el: e, idx: pi, prop: p}
		if e.mapped == nil {
			if p.IsList() {
				if e.lists[pi] == nil {
					return nil, errBodyf(ErrSchema, e.name, -1, name, "column has no data")
				}
				c.list = e.lists[pi]
			} else {
				if e.scalars[pi] == nil {
					return nil, errBodyf(ErrSchema, e.name, -1, name, "column has no data")
				}
				c.scalar = e.scalars[pi]
			}
		}
		return c, nil
	}
	if c, ok := e.extras[name]; ok {
		return c, nil
	}
	return nil, errBodyf(ErrSchema, e.name, -1, name, "no such column")
}

// SetColumn replaces the named column with a caller-provided slice. For a
// declared scalar property the value must be one of []int8 ... []float64;
// for a declared list property one of [][]int8 ... [][]float64. The storage
// type may differ from the declared type; the gap triggers an implicit cast
// on write. A name outside the schema installs an extra column, which write
// ignores. The slice is adopted, not copied; its length must equal Count.
//
// Replacing a column of a mapped element first detaches the element into
// owned storage.
func (e *Element) SetColumn(name string, data any) error {
	if e.mapped != nil {
		e.Detach()
	}
	pi, declared := e.byName[name]
	if declared && e.props[pi].IsList() {
		store, ok := listStoreFromSlice(data)
		if !ok {
			return errBodyf(ErrSchema, e.name, -1, name, "unsupported list column type %T", data)
		}
		if store.length() != e.count {
			return errBodyf(ErrSchema, e.name, -1, name,
				"column length %d does not match element count %d", store.length(), e.count)
		}
		e.lists[pi] = store
		return nil
	}
	if declared {
		store, ok := scalarStoreFromSlice(data)
		if !ok {
			return errBodyf(ErrSchema, e.name, -1, name, "unsupported column type %T", data)
		}
		if store.length() != e.count {
			return errBodyf(ErrSchema, e.name, -1, name,
				"column length %d does not match element count %d", store.length(), e.count)
		}
		e.scalars[pi] = store
		return nil
	}

	// Extra column: kept for the caller, ignored on write.
	if store, ok := scalarStoreFromSlice(data); ok {
		if store.length() != e.count {
			return errBodyf(ErrSchema, e.name, -1, name,
				"column length %d does not match element count %d", store.length(), e.count)
		}
		e.setExtra(name, &Column{el: e, idx: -1, prop: NewProperty(name, store.storageType()), scalar: store})
		return nil
	}
	if store, ok := listStoreFromSlice(data); ok {
		if store.length() != e.count {
			return errBodyf(ErrSchema, e.name, -1, name,
				"column length %d does not match element count %d", store.length(), e.count)
		}
		prop := NewListProperty(name, Uint32, store.storageType())
		e.setExtra(name, &Column{el: e, idx: -1, prop: prop, list: store})
		return nil
	}
	return errBodyf(ErrSchema, e.name, -1, name, "unsupported column type %T", data)
}

func (e *Element) setExtra(name string, c *Column) {
	if e.extras == nil {
		e.extras = make(map[string]*Column)
	}
	e.extras[name] = c
}

// Row returns a read-only view of row i.
func (e *Element) Row(i int) Row { return Row{el: e, i: i} }

// Equal reports structural equivalence: same name, count, and property
// sequence by name, position, and types. Data and comments do not
// participate.
func (e *Element) Equal(other *Element) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e.name != other.name || e.count != other.count || len(e.props) != len(other.props) {
		return false
	}
	for i, p := range e.props {
		if p != other.props[i] {
			return false
		}
	}
	return true
}

// HeaderLines returns the canonical header block for the element.
func (e *Element) HeaderLines() []string {
	lines := make([]string, 0, 1+len(e.comments)+len(e.props))
	lines = append(lines, fmt.Sprintf("element %s %d", e.name, e.count))
	for _, c := range e.comments {
		lines = append(lines, "comment "+c)
	}
	for _, p := range e.props {
		lines = append(lines, p.HeaderLine())
	}
	return lines
}

// Detach materializes a mapped row table into owned storage, copying the
// mapped region column by column. Afterwards the element no longer
// references the mapping and survives File.Close. Owned elements are
// untouched.
func (e *Element) Detach() {
	mt := e.mapped
	if mt == nil {
		return
	}
	for pi, p := range e.props {
		if p.IsList() {
			k := mt.listLens[pi]
			lw, vw := p.LenType.ByteWidth(), p.Type.ByteWidth()
			store := newListStore(p.Type, e.count)
			for i := 0; i < e.count; i++ {
				store.resizeRow(i, k)
				for j := 0; j < k; j++ {
					store.setBits(i, j, mt.listBitsAt(pi, i, j, lw, vw))
				}
			}
			e.lists[pi] = store
			continue
		}
		w := p.Type.ByteWidth()
		store := newScalarStore(p.Type, e.count)
		for i := 0; i < e.count; i++ {
			store.setBits(i, mt.bitsAt(pi, i, w))
		}
		e.scalars[pi] = store
	}
	e.mapped = nil
}

// missingColumns returns the declared properties without data, in schema
// order. Mapped elements have every column by construction.
func (e *Element) missingColumns() []string {
	if e.mapped != nil {
		return nil
	}
	var missing []string
	for pi, p := range e.props {
		if p.IsList() {
			if e.lists[pi] == nil {
				missing = append(missing, p.Name)
			}
		} else if e.scalars[pi] == nil {
			missing = append(missing, p.Name)
		}
	}
	return missing
}

// declaredBits returns scalar property pi of row i as bits of the declared
// type, casting from the storage type when they differ.
func (e *Element) declaredBits(pi, i int) (uint64, error) {
	p := e.props[pi]
	if e.mapped != nil {
		return e.mapped.bitsAt(pi, i, p.Type.ByteWidth()), nil
	}
	st := e.scalars[pi]
	return castBits(st.bitsAt(i), st.storageType(), p.Type)
}

// listLen returns the list length of property pi in row i.
func (e *Element) listLen(pi, i int) int {
	if e.mapped != nil {
		return e.mapped.listLens[pi]
	}
	return e.lists[pi].rowLen(i)
}

// declaredListBits returns value j of list property pi in row i as bits of
// the declared value type.
func (e *Element) declaredListBits(pi, i, j int) (uint64, error) {
	p := e.props[pi]
	if e.mapped != nil {
		return e.mapped.listBitsAt(pi, i, j, p.LenType.ByteWidth(), p.Type.ByteWidth()), nil
	}
	ls := e.lists[pi]
	return castBits(ls.bitsAt(i, j), ls.storageType(), p.Type)
}

func validateComment(c string) error {
	for _, r := range c {
		if r == '\n' || r == '\r' {
			return errBodyf(ErrName, "", -1, "", "comment contains a line terminator")
		}
	}
	return nil
}
