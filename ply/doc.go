// Package ply reads and writes the PLY polygon file format in its three
// encodings: ASCII, binary little-endian, and binary big-endian.
//
// A file is a sequence of named elements, each a table of rows described by
// an ordered property schema. Properties are fixed-width scalars or
// variable-length lists of scalars. The package materializes every element
// into a typed columnar row table that callers can inspect and mutate, and
// writes files back in any of the three encodings.
//
// Reading:
//
//	f, err := ply.Open("mesh.ply", nil)
//	if err != nil { ... }
//	vertex, _ := f.Element("vertex")
//	x, _ := vertex.Column("x")
//	xs, _ := ply.ColumnData[float32](x)
//
// Fixed-layout binary elements can be exposed as views of a memory-mapped
// file instead of copies:
//
//	f, err := ply.Open("mesh.ply", &ply.ReadOptions{MemoryMap: ply.MapReadOnly})
//	defer f.Close()
//
// A read-write mapping (MapReadWrite) makes column stores durable after
// Flush. Elements whose list properties all have a caller-known constant
// length can join the fixed-layout path through ReadOptions.KnownListLen;
// the promise is validated against every length prefix during the read.
//
// The package treats PLY as a generic tabular format: element and property
// names carry no geometric meaning. All operations are synchronous and
// unsynchronized; callers sharing a File or Element across goroutines must
// arrange their own exclusion.
package ply
