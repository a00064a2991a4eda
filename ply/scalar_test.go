package ply

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScalarTypeSpellings(t *testing.T) {
	cases := map[string]ScalarType{
		"char": Int8, "int8": Int8,
		"uchar": Uint8, "uint8": Uint8,
		"short": Int16, "int16": Int16,
		"ushort": Uint16, "uint16": Uint16,
		"int": Int32, "int32": Int32,
		"uint": Uint32, "uint32": Uint32,
		"float": Float32, "float32": Float32,
		"double": Float64, "float64": Float64,
	}
	for tok, want := range cases {
		got, err := ParseScalarType(tok)
		require.NoError(t, err, tok)
		require.Equal(t, want, got, tok)
	}

	for _, tok := range []string{"", "Float", "INT", "int64", "uint64", "half", "float16"} {
		_, err := ParseScalarType(tok)
		require.ErrorIs(t, err, ErrHeader, tok)
	}
}

func TestScalarTypeProperties(t *testing.T) {
	cases := []struct {
		st     ScalarType
		name   string
		short  string
		width  int
		float  bool
		signed bool
	}{
		{Int8, "int8", "char", 1, false, true},
		{Uint8, "uint8", "uchar", 1, false, false},
		{Int16, "int16", "short", 2, false, true},
		{Uint16, "uint16", "ushort", 2, false, false},
		{Int32, "int32", "int", 4, false, true},
		{Uint32, "uint32", "uint", 4, false, false},
		{Float32, "float32", "float", 4, true, false},
		{Float64, "float64", "double", 8, true, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.name, c.st.String())
		assert.Equal(t, c.short, c.st.ShortName())
		assert.Equal(t, c.width, c.st.ByteWidth())
		assert.Equal(t, c.float, c.st.IsFloat())
		assert.Equal(t, c.signed, c.st.IsSigned())
	}
}

func TestParseASCIIScalarErrors(t *testing.T) {
	cases := []struct {
		tok string
		st  ScalarType
	}{
		{"300", Uint8},     // overflow
		{"-1", Uint8},      // sign on unsigned
		{"128", Int8},      // overflow
		{"abc", Int32},     // not a number
		{"1.5", Int32},     // integer literals are decimal
		{"1e400", Float64}, // float overflow
		{"", Float32},
	}
	for _, c := range cases {
		_, err := parseASCIIScalar(c.tok, c.st)
		require.ErrorIs(t, err, ErrValue, "%s as %s", c.tok, c.st)
	}
}

func TestASCIIScalarRoundTrip(t *testing.T) {
	for _, tok := range []string{"0", "1", "-128", "127"} {
		bits, err := parseASCIIScalar(tok, Int8)
		require.NoError(t, err)
		require.Equal(t, tok, formatASCIIScalar(bits, Int8))
	}
	for _, tok := range []string{"0", "0.1", "1", "-2.5", "3.4028235e+38"} {
		bits, err := parseASCIIScalar(tok, Float32)
		require.NoError(t, err)
		back, err := parseASCIIScalar(formatASCIIScalar(bits, Float32), Float32)
		require.NoError(t, err)
		require.Equal(t, bits, back, tok)
	}
}

func TestCastBits(t *testing.T) {
	// In-range integer narrowing is allowed.
	bits, err := castBits(intToBits(Int32, 255), Int32, Uint8)
	require.NoError(t, err)
	require.EqualValues(t, 255, bitsToUint64(Uint8, bits))

	// Out-of-range narrowing fails.
	_, err = castBits(intToBits(Int32, 300), Int32, Uint8)
	require.ErrorIs(t, err, ErrValue)

	// Negative into unsigned fails.
	_, err = castBits(intToBits(Int16, -5), Int16, Uint16)
	require.ErrorIs(t, err, ErrValue)

	// Integral float into integer is allowed; fractional is not.
	f255, err := float64ToBits(Float64, 255)
	require.NoError(t, err)
	bits, err = castBits(f255, Float64, Uint8)
	require.NoError(t, err)
	require.EqualValues(t, 255, bitsToUint64(Uint8, bits))

	fHalf, _ := float64ToBits(Float64, 1.5)
	_, err = castBits(fHalf, Float64, Int32)
	require.ErrorIs(t, err, ErrValue)

	// A finite float64 that overflows float32 fails.
	fBig, _ := float64ToBits(Float64, 1e39)
	_, err = castBits(fBig, Float64, Float32)
	require.ErrorIs(t, err, ErrValue)

	// Any integer widens into a float.
	bits, err = castBits(intToBits(Uint16, 65535), Uint16, Float32)
	require.NoError(t, err)
	require.Equal(t, float64(65535), bitsToFloat64(Float32, bits))
}

func TestListLenFromBits(t *testing.T) {
	k, err := listLenFromBits(Uint8, intToBits(Uint8, 3))
	require.NoError(t, err)
	require.Equal(t, 3, k)

	_, err = listLenFromBits(Int8, intToBits(Int8, -1))
	require.ErrorIs(t, err, ErrBody)
}
