package ply

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func parseHeaderString(s string) (*File, error) {
	return parseHeader(newLineReader(strings.NewReader(s)))
}

const minimalHeader = "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nend_header\n"

func TestParseHeaderMinimal(t *testing.T) {
	f, err := parseHeaderString(minimalHeader)
	require.NoError(t, err)
	require.True(t, f.Text())
	require.Equal(t, FormatASCII, f.Format())
	require.Equal(t, "1.0", f.Version())
	require.Len(t, f.Elements(), 1)
	e := f.Elements()[0]
	require.Equal(t, "vertex", e.Name())
	require.Equal(t, 1, e.Count())
	require.Equal(t, []Property{NewProperty("x", Float32)}, e.Properties())
}

func TestParseHeaderCommentScoping(t *testing.T) {
	f, err := parseHeaderString(
		"ply\n" +
			"format binary_big_endian 1.0\n" +
			"comment container scope\n" +
			"obj_info made by plykit\n" +
			"element vertex 2\n" +
			"comment element scope\n" +
			"property float32 x\n" +
			"end_header\n")
	require.NoError(t, err)
	require.False(t, f.Text())
	require.Equal(t, OrderBig, f.ByteOrder())
	require.Equal(t, []string{"container scope"}, f.Comments())
	require.Equal(t, []string{"made by plykit"}, f.ObjInfo())
	e, ok := f.Element("vertex")
	require.True(t, ok)
	require.Equal(t, []string{"element scope"}, e.Comments())
}

func TestParseHeaderCommentWhitespace(t *testing.T) {
	f, err := parseHeaderString(
		"ply\nformat ascii 1.0\ncomment   indented text\t \nelement vertex 0\nproperty float x\nend_header\n")
	require.NoError(t, err)
	// Leading whitespace of the text survives; trailing does not.
	require.Equal(t, []string{"  indented text"}, f.Comments())
}

func TestParseHeaderCommentBeforeFormat(t *testing.T) {
	f, err := parseHeaderString(
		"ply\ncomment banner\nformat ascii 1.0\nelement vertex 0\nproperty float x\nend_header\n")
	require.NoError(t, err)
	require.Equal(t, []string{"banner"}, f.Comments())
}

func TestParseHeaderBlankLinesSkipped(t *testing.T) {
	f, err := parseHeaderString(
		"ply\nformat ascii 1.0\n\n   \nelement vertex 0\n\nproperty float x\nend_header\n")
	require.NoError(t, err)
	require.Len(t, f.Elements(), 1)
}

func TestParseHeaderLineEndings(t *testing.T) {
	lf := minimalHeader
	crlf := strings.ReplaceAll(lf, "\n", "\r\n")
	cr := strings.ReplaceAll(lf, "\n", "\r")
	for name, src := range map[string]string{"crlf": crlf, "cr": cr} {
		f, err := parseHeaderString(src)
		require.NoError(t, err, name)
		require.Len(t, f.Elements(), 1, name)
	}
}

func TestParseHeaderLatin1Comment(t *testing.T) {
	src := "ply\nformat ascii 1.0\ncomment caf\xe9\nelement vertex 0\nproperty float x\nend_header\n"
	f, err := parseHeaderString(src)
	require.NoError(t, err)
	require.Equal(t, []string{"café"}, f.Comments())
}

func TestParseHeaderErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		line int
		msg  string
	}{
		{"empty", "", 1, "empty input"},
		{"bad magic", "plx\n", 1, "bad magic"},
		{"missing end", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\n", 4, "premature end"},
		{"unknown keyword", "ply\nformat ascii 1.0\nelephant vertex 1\n", 3, "unknown keyword"},
		{"dup format", "ply\nformat ascii 1.0\nformat ascii 1.0\n", 3, "duplicate format"},
		{"bad format", "ply\nformat binary 1.0\n", 2, "unknown format"},
		{"bad version", "ply\nformat ascii 2.0\n", 2, "unsupported version"},
		{"malformed format", "ply\nformat ascii\n", 2, "malformed format"},
		{"element before format", "ply\nelement vertex 1\n", 2, "element before format"},
		{"malformed count", "ply\nformat ascii 1.0\nelement vertex many\n", 3, "malformed count"},
		{"negative count", "ply\nformat ascii 1.0\nelement vertex -1\n", 3, "malformed count"},
		{"property outside element", "ply\nformat ascii 1.0\nproperty float x\n", 3, "outside an element"},
		{"dup property", "ply\nformat ascii 1.0\nelement v 1\nproperty float x\nproperty int x\n", 5, "duplicate property"},
		{"dup element", "ply\nformat ascii 1.0\nelement v 1\nproperty float x\nelement v 2\n", 5, "duplicate element"},
		{"obj_info in element", "ply\nformat ascii 1.0\nelement v 1\nobj_info oops\n", 4, "obj_info inside element"},
		{"no elements", "ply\nformat ascii 1.0\nend_header\n", 3, "no elements"},
		{"element without properties", "ply\nformat ascii 1.0\nelement v 1\nend_header\n", 4, "no properties"},
		{"unknown type", "ply\nformat ascii 1.0\nelement v 1\nproperty quux x\n", 4, "unknown type"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := parseHeaderString(c.src)
			pe := requireParseError(t, err, ErrHeader, "", -1, "")
			require.Equal(t, c.line, pe.Line)
			require.Contains(t, pe.Error(), c.msg)
		})
	}
}

func TestHeaderBytesCanonical(t *testing.T) {
	f := readString(t, tetraASCII, nil)
	hdr, err := f.headerBytes()
	require.NoError(t, err)
	want := tetraCanonical[:strings.Index(tetraCanonical, "end_header\n")+len("end_header\n")]
	require.Equal(t, want, string(hdr))
}

func TestHeaderBytesRejectsBadNames(t *testing.T) {
	e, err := NewElement("vertex", []Property{NewProperty("x", Float32)}, 0)
	require.NoError(t, err)
	f := New()
	require.NoError(t, f.SetElements([]*Element{e}))
	require.NoError(t, e.SetColumn("x", []float32{}))

	// Force an unemittable element name past the constructor.
	e.name = "has space"
	_, err = f.headerBytes()
	require.ErrorIs(t, err, ErrName)
}
