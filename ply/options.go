package ply

// MapMode selects the memory-mapping policy of Open.
type MapMode int

const (
	// MapOff reads every element into owned storage.
	MapOff MapMode = iota
	// MapReadOnly exposes fixed-layout binary elements as read-only views
	// of the mapped file, swapping byte order on access when the file's
	// order is not native.
	MapReadOnly
	// MapReadWrite exposes fixed-layout binary elements as writable views
	// when the file's byte order is native; stores become durable after
	// File.Flush. Elements that do not qualify fall back to owned storage.
	MapReadWrite
)

// ReadOptions configures Read and Open. The zero value reads everything
// into owned storage with no list-length promises.
type ReadOptions struct {
	// MemoryMap is honored by Open only; Read always produces owned
	// storage since a stream cannot be mapped.
	MemoryMap MapMode

	// KnownListLen promises, per element name and property name, that
	// every row of the named list property has exactly the given length.
	// An element whose list properties are all covered is decoded on the
	// bulk fixed-layout path (and may be mapped); every length prefix is
	// validated against the promise and a mismatch fails the read. An
	// element covered only partially is decoded normally.
	KnownListLen map[string]map[string]int
}

func (o *ReadOptions) knownFor(element string) map[string]int {
	if o == nil {
		return nil
	}
	return o.KnownListLen[element]
}

// validateKnown rejects promises that name unknown elements or properties,
// name scalar properties, or carry non-positive lengths.
func validateKnown(f *File, known map[string]map[string]int) error {
	for elName, props := range known {
		e, ok := f.Element(elName)
		if !ok {
			return errBodyf(ErrSchema, elName, -1, "", "known list length names unknown element %q", elName)
		}
		for pName, k := range props {
			pi, ok := e.byName[pName]
			if !ok {
				return errBodyf(ErrSchema, elName, -1, pName, "known list length names unknown property %q", pName)
			}
			if !e.props[pi].IsList() {
				return errBodyf(ErrSchema, elName, -1, pName, "known list length names a scalar property")
			}
			if k <= 0 {
				return errBodyf(ErrSchema, elName, -1, pName, "known list length %d must be positive", k)
			}
		}
	}
	return nil
}
