package ply

import "errors"

// ErrReadOnly reports a store through a read-only backing.
var ErrReadOnly = errors.New("ply: read-only backing")

// Column is a typed view over one column of an element's row table. Numeric
// access converts through float64 or int64 regardless of the storage type;
// exact typed slices are available through ColumnData and ColumnLists for
// owned columns.
type Column struct {
	el   *Element
	idx  int // schema index; -1 for extra columns
	prop Property

	// Owned backings; both nil when the element is mapped.
	scalar scalarStore
	list   listStore
}

// Name returns the column name.
func (c *Column) Name() string { return c.prop.Name }

// Type returns the declared value type. For extra columns it is the storage
// type.
func (c *Column) Type() ScalarType { return c.prop.Type }

// IsList reports whether the column holds list values.
func (c *Column) IsList() bool { return c.prop.IsList() }

// Len returns the number of rows.
func (c *Column) Len() int {
	if c.idx < 0 {
		if c.list != nil {
			return c.list.length()
		}
		return c.scalar.length()
	}
	return c.el.count
}

func (c *Column) mt() *mappedTable {
	if c.idx < 0 {
		return nil
	}
	return c.el.mapped
}

// Float64At returns the scalar value of row i widened to float64.
func (c *Column) Float64At(i int) float64 {
	if mt := c.mt(); mt != nil {
		return bitsToFloat64(c.prop.Type, mt.bitsAt(c.idx, i, c.prop.Type.ByteWidth()))
	}
	return c.scalar.float64At(i)
}

// Int64At returns the scalar value of row i as int64; float values are
// truncated toward zero.
func (c *Column) Int64At(i int) int64 {
	if mt := c.mt(); mt != nil {
		return bitsToInt64(c.prop.Type, mt.bitsAt(c.idx, i, c.prop.Type.ByteWidth()))
	}
	if c.scalar.storageType().IsFloat() {
		return int64(c.scalar.float64At(i))
	}
	return bitsToInt64(c.scalar.storageType(), c.scalar.bitsAt(i))
}

// SetFloat64At stores v into row i, rejecting values the column's type
// cannot represent. Stores into a read-only mapped column fail with
// ErrReadOnly.
func (c *Column) SetFloat64At(i int, v float64) error {
	if mt := c.mt(); mt != nil {
		if !mt.writable {
			return errBodyf(ErrSchema, c.el.name, i, c.prop.Name, "column is read-only").wrap(ErrReadOnly)
		}
		bits, err := float64ToBits(c.prop.Type, v)
		if err != nil {
			return err
		}
		mt.setBits(c.idx, i, c.prop.Type.ByteWidth(), bits)
		return nil
	}
	return c.scalar.setFloat64(i, v)
}

// SetInt64At stores v into row i with the same representability rules as
// SetFloat64At.
func (c *Column) SetInt64At(i int, v int64) error {
	st := c.prop.Type
	if mt := c.mt(); mt != nil {
		if !mt.writable {
			return errBodyf(ErrSchema, c.el.name, i, c.prop.Name, "column is read-only").wrap(ErrReadOnly)
		}
		bits, err := int64ToBits(st, v)
		if err != nil {
			return err
		}
		mt.setBits(c.idx, i, st.ByteWidth(), bits)
		return nil
	}
	bits, err := int64ToBits(c.scalar.storageType(), v)
	if err != nil {
		return err
	}
	c.scalar.setBits(i, bits)
	return nil
}

// ListLen returns the list length of row i.
func (c *Column) ListLen(i int) int {
	if mt := c.mt(); mt != nil {
		return mt.listLens[c.idx]
	}
	return c.list.rowLen(i)
}

// ListFloat64At returns value j of the list in row i widened to float64.
func (c *Column) ListFloat64At(i, j int) float64 {
	if mt := c.mt(); mt != nil {
		p := c.prop
		return bitsToFloat64(p.Type, mt.listBitsAt(c.idx, i, j, p.LenType.ByteWidth(), p.Type.ByteWidth()))
	}
	return c.list.float64At(i, j)
}

// SetListFloat64At stores v into value j of the list in row i.
func (c *Column) SetListFloat64At(i, j int, v float64) error {
	if mt := c.mt(); mt != nil {
		if !mt.writable {
			return errBodyf(ErrSchema, c.el.name, i, c.prop.Name, "column is read-only").wrap(ErrReadOnly)
		}
		bits, err := float64ToBits(c.prop.Type, v)
		if err != nil {
			return err
		}
		p := c.prop
		mt.setListBits(c.idx, i, j, p.LenType.ByteWidth(), p.Type.ByteWidth(), bits)
		return nil
	}
	return c.list.setFloat64(i, j, v)
}

// ListAt returns a copy of the list in row i widened to float64.
func (c *Column) ListAt(i int) []float64 {
	n := c.ListLen(i)
	out := make([]float64, n)
	for j := 0; j < n; j++ {
		out[j] = c.ListFloat64At(i, j)
	}
	return out
}

// SetListAt replaces the list in row i. For mapped columns the length must
// equal the promoted list length.
func (c *Column) SetListAt(i int, vals []float64) error {
	if mt := c.mt(); mt != nil {
		if !mt.writable {
			return errBodyf(ErrSchema, c.el.name, i, c.prop.Name, "column is read-only").wrap(ErrReadOnly)
		}
		if len(vals) != mt.listLens[c.idx] {
			return errBodyf(ErrListLength, c.el.name, i, c.prop.Name,
				"list length %d does not match mapped length %d", len(vals), mt.listLens[c.idx])
		}
		for j, v := range vals {
			if err := c.SetListFloat64At(i, j, v); err != nil {
				return err
			}
		}
		return nil
	}
	return c.list.setRowFloat64(i, vals)
}

// Uniform reports whether every row's list has the same length, and that
// length. Scalar columns report their width trivially uniform at 1.
func (c *Column) Uniform() (int, bool) {
	if !c.IsList() {
		return 1, true
	}
	if mt := c.mt(); mt != nil {
		return mt.listLens[c.idx], true
	}
	return c.list.uniformLen()
}

// Dense flattens a list column into one row-major block of shape (Len, k)
// when every row has the same length k. The second return is k; ok is false
// for ragged columns and for scalar columns.
func (c *Column) Dense() (vals []float64, k int, ok bool) {
	if !c.IsList() {
		return nil, 0, false
	}
	k, uniform := c.Uniform()
	if !uniform {
		return nil, 0, false
	}
	n := c.Len()
	vals = make([]float64, 0, n*k)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			vals = append(vals, c.ListFloat64At(i, j))
		}
	}
	return vals, k, true
}

// ColumnData returns the owned dense storage of a scalar column when its
// storage type is exactly T. The slice is shared, not copied; mutations are
// visible through the column.
func ColumnData[T Numeric](c *Column) ([]T, bool) {
	if c.scalar == nil {
		return nil, false
	}
	s, ok := c.scalar.slice().([]T)
	return s, ok
}

// ColumnLists returns the owned per-row storage of a list column when its
// storage type is exactly T. The slices are shared, not copied.
func ColumnLists[T Numeric](c *Column) ([][]T, bool) {
	if c.list == nil {
		return nil, false
	}
	s, ok := c.list.rows().([][]T)
	return s, ok
}

// Row is a read-only view across the columns of one row.
type Row struct {
	el *Element
	i  int
}

// Index returns the row index.
func (r Row) Index() int { return r.i }

// Float64 returns the named scalar field widened to float64.
func (r Row) Float64(name string) (float64, error) {
	c, err := r.el.Column(name)
	if err != nil {
		return 0, err
	}
	if c.IsList() {
		return 0, errBodyf(ErrSchema, r.el.name, r.i, name, "property is a list")
	}
	return c.Float64At(r.i), nil
}

// Int64 returns the named scalar field as int64.
func (r Row) Int64(name string) (int64, error) {
	c, err := r.el.Column(name)
	if err != nil {
		return 0, err
	}
	if c.IsList() {
		return 0, errBodyf(ErrSchema, r.el.name, r.i, name, "property is a list")
	}
	return c.Int64At(r.i), nil
}

// List returns a copy of the named list field widened to float64.
func (r Row) List(name string) ([]float64, error) {
	c, err := r.el.Column(name)
	if err != nil {
		return nil, err
	}
	if !c.IsList() {
		return nil, errBodyf(ErrSchema, r.el.name, r.i, name, "property is not a list")
	}
	return c.ListAt(r.i), nil
}

// Values returns the row as a tuple in property order: scalars as their
// typed Go values, lists as []float64 copies (see ListAt).
func (r Row) Values() ([]any, error) {
	out := make([]any, len(r.el.props))
	for pi, p := range r.el.props {
		c, err := r.el.Column(p.Name)
		if err != nil {
			return nil, err
		}
		if p.IsList() {
			out[pi] = c.ListAt(r.i)
			continue
		}
		out[pi] = typedValue(p.Type, c, r.i)
	}
	return out, nil
}

func typedValue(t ScalarType, c *Column, i int) any {
	switch t {
	case Int8:
		return int8(c.Int64At(i))
	case Uint8:
		return uint8(c.Int64At(i))
	case Int16:
		return int16(c.Int64At(i))
	case Uint16:
		return uint16(c.Int64At(i))
	case Int32:
		return int32(c.Int64At(i))
	case Uint32:
		return uint32(c.Int64At(i))
	case Float32:
		return float32(c.Float64At(i))
	default:
		return c.Float64At(i)
	}
}
