package ply

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// --- shared fixtures: a single tetrahedron with colored faces ---

const tetraASCII = `ply
format ascii 1.0
comment single tetrahedron with colored faces
element vertex 4
comment tetrahedron vertices
property float x
property float y
property float z
element face 4
property list uchar int vertex_indices
property uchar red
property uchar green
property uchar blue
end_header
0 0 0
0 1 1
1 0 1
1 1 0
3 0 1 2 255 255 255
3 0 2 3 255 0 0
3 0 1 3 0 255 0
3 1 2 3 0 0 255
`

// tetraCanonical is what the writer emits for tetraASCII: explicit type
// spellings, LF terminators, canonical comment placement.
const tetraCanonical = `ply
format ascii 1.0
comment single tetrahedron with colored faces
element vertex 4
comment tetrahedron vertices
property float32 x
property float32 y
property float32 z
element face 4
property list uint8 int32 vertex_indices
property uint8 red
property uint8 green
property uint8 blue
end_header
0 0 0
0 1 1
1 0 1
1 1 0
3 0 1 2 255 255 255
3 0 2 3 255 0 0
3 0 1 3 0 255 0
3 1 2 3 0 0 255
`

var (
	tetraX       = []float32{0, 0, 1, 1}
	tetraY       = []float32{0, 1, 0, 1}
	tetraZ       = []float32{0, 1, 1, 0}
	tetraIndices = [][]int32{{0, 1, 2}, {0, 2, 3}, {0, 1, 3}, {1, 2, 3}}
	tetraRed     = []uint8{255, 255, 0, 0}
	tetraGreen   = []uint8{255, 0, 255, 0}
	tetraBlue    = []uint8{255, 0, 0, 255}
)

// tetraBinary renders the tetrahedron in the given binary format.
// faceLens overrides the per-face index count; nil means all 3.
func tetraBinary(t *testing.T, order binary.ByteOrder, faceLens []int) []byte {
	t.Helper()

	formatName := "binary_little_endian"
	if order == binary.BigEndian {
		formatName = "binary_big_endian"
	}
	var b bytes.Buffer
	b.WriteString("ply\nformat " + formatName + " 1.0\n")
	b.WriteString("comment single tetrahedron with colored faces\n")
	b.WriteString("element vertex 4\ncomment tetrahedron vertices\n")
	b.WriteString("property float32 x\nproperty float32 y\nproperty float32 z\n")
	b.WriteString("element face 4\n")
	b.WriteString("property list uint8 int32 vertex_indices\n")
	b.WriteString("property uint8 red\nproperty uint8 green\nproperty uint8 blue\n")
	b.WriteString("end_header\n")

	for i := 0; i < 4; i++ {
		for _, v := range []float32{tetraX[i], tetraY[i], tetraZ[i]} {
			require.NoError(t, binary.Write(&b, order, v))
		}
	}
	for i := 0; i < 4; i++ {
		n := 3
		if faceLens != nil {
			n = faceLens[i]
		}
		b.WriteByte(uint8(n))
		for j := 0; j < n; j++ {
			idx := int32(j)
			if j < len(tetraIndices[i]) {
				idx = tetraIndices[i][j]
			}
			require.NoError(t, binary.Write(&b, order, idx))
		}
		b.WriteByte(tetraRed[i])
		b.WriteByte(tetraGreen[i])
		b.WriteByte(tetraBlue[i])
	}
	return b.Bytes()
}

func readString(t *testing.T, src string, opts *ReadOptions) *File {
	t.Helper()
	f, err := Read(strings.NewReader(src), opts)
	require.NoError(t, err)
	return f
}

func readBytes(t *testing.T, src []byte, opts *ReadOptions) *File {
	t.Helper()
	f, err := Read(bytes.NewReader(src), opts)
	require.NoError(t, err)
	return f
}

// requireTetra checks the decoded tetrahedron contents regardless of the
// source encoding.
func requireTetra(t *testing.T, f *File) {
	t.Helper()

	require.Len(t, f.Elements(), 2)

	vertex, ok := f.Element("vertex")
	require.True(t, ok)
	require.Equal(t, 4, vertex.Count())
	for name, want := range map[string][]float32{"x": tetraX, "y": tetraY, "z": tetraZ} {
		c, err := vertex.Column(name)
		require.NoError(t, err)
		for i, w := range want {
			require.Equal(t, float64(w), c.Float64At(i), "vertex %s row %d", name, i)
		}
	}

	face, ok := f.Element("face")
	require.True(t, ok)
	require.Equal(t, 4, face.Count())
	vi, err := face.Column("vertex_indices")
	require.NoError(t, err)
	for i, want := range tetraIndices {
		require.Equal(t, len(want), vi.ListLen(i))
		for j, w := range want {
			require.Equal(t, float64(w), vi.ListFloat64At(i, j), "face %d index %d", i, j)
		}
	}
	for name, want := range map[string][]uint8{"red": tetraRed, "green": tetraGreen, "blue": tetraBlue} {
		c, err := face.Column(name)
		require.NoError(t, err)
		for i, w := range want {
			require.Equal(t, int64(w), c.Int64At(i), "face %s row %d", name, i)
		}
	}
}

// requireParseError asserts the error is a *ParseError in the given
// category with the given context.
func requireParseError(t *testing.T, err error, cat error, element string, row int, property string) *ParseError {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, cat)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, element, pe.Element)
	require.Equal(t, row, pe.Row)
	require.Equal(t, property, pe.Property)
	return pe
}

func writeString(t *testing.T, f *File) string {
	t.Helper()
	var b bytes.Buffer
	require.NoError(t, f.Write(&b))
	return b.String()
}
