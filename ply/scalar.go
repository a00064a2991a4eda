package ply

import (
	"math"
	"strconv"
)

// ScalarType identifies one of the eight scalar types a property can carry.
// The zero value is invalid.
type ScalarType uint8

const (
	typeInvalid ScalarType = iota
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Float32
	Float64
)

// scalarNames maps both accepted spellings to their type. Lookups are
// case-sensitive.
var scalarNames = map[string]ScalarType{
	"char": Int8, "int8": Int8,
	"uchar": Uint8, "uint8": Uint8,
	"short": Int16, "int16": Int16,
	"ushort": Uint16, "uint16": Uint16,
	"int": Int32, "int32": Int32,
	"uint": Uint32, "uint32": Uint32,
	"float": Float32, "float32": Float32,
	"double": Float64, "float64": Float64,
}

// ParseScalarType maps either the historical short spelling ("int") or the
// explicit width-bearing spelling ("int32") to a scalar type.
func ParseScalarType(tok string) (ScalarType, error) {
	t, ok := scalarNames[tok]
	if !ok {
		return typeInvalid, errHeaderf(0, "unknown scalar type %q", tok)
	}
	return t, nil
}

// String returns the canonical explicit spelling used on emission.
func (t ScalarType) String() string {
	switch t {
	case Int8:
		return "int8"
	case Uint8:
		return "uint8"
	case Int16:
		return "int16"
	case Uint16:
		return "uint16"
	case Int32:
		return "int32"
	case Uint32:
		return "uint32"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "invalid"
	}
}

// ShortName returns the historical spelling ("char", "uchar", ...).
func (t ScalarType) ShortName() string {
	switch t {
	case Int8:
		return "char"
	case Uint8:
		return "uchar"
	case Int16:
		return "short"
	case Uint16:
		return "ushort"
	case Int32:
		return "int"
	case Uint32:
		return "uint"
	case Float32:
		return "float"
	case Float64:
		return "double"
	default:
		return "invalid"
	}
}

// ByteWidth returns the fixed on-disk width of the type.
func (t ScalarType) ByteWidth() int {
	switch t {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Float64:
		return 8
	default:
		return 0
	}
}

// IsFloat reports whether the type is a floating-point type.
func (t ScalarType) IsFloat() bool { return t == Float32 || t == Float64 }

// IsSigned reports whether the type is a signed integer type.
func (t ScalarType) IsSigned() bool { return t == Int8 || t == Int16 || t == Int32 }

func (t ScalarType) valid() bool { return t >= Int8 && t <= Float64 }

func (t ScalarType) bits() int { return t.ByteWidth() * 8 }

func (t ScalarType) intMin() int64 {
	switch t {
	case Int8:
		return math.MinInt8
	case Int16:
		return math.MinInt16
	case Int32:
		return math.MinInt32
	default:
		return 0
	}
}

func (t ScalarType) intMax() int64 {
	switch t {
	case Int8:
		return math.MaxInt8
	case Int16:
		return math.MaxInt16
	case Int32:
		return math.MaxInt32
	default:
		return 0
	}
}

func (t ScalarType) uintMax() uint64 {
	switch t {
	case Uint8:
		return math.MaxUint8
	case Uint16:
		return math.MaxUint16
	case Uint32:
		return math.MaxUint32
	default:
		return 0
	}
}

// Field values travel through the codecs as raw bits: the low ByteWidth
// bytes of a uint64, holding the type's binary representation. Signed
// integers are stored two's-complement in the low bytes; floats as their
// IEEE-754 bit patterns.

func bitsToFloat64(t ScalarType, bits uint64) float64 {
	switch t {
	case Int8:
		return float64(int8(bits))
	case Uint8:
		return float64(uint8(bits))
	case Int16:
		return float64(int16(bits))
	case Uint16:
		return float64(uint16(bits))
	case Int32:
		return float64(int32(bits))
	case Uint32:
		return float64(uint32(bits))
	case Float32:
		return float64(math.Float32frombits(uint32(bits)))
	case Float64:
		return math.Float64frombits(bits)
	default:
		return 0
	}
}

func bitsToInt64(t ScalarType, bits uint64) int64 {
	switch t {
	case Int8:
		return int64(int8(bits))
	case Uint8:
		return int64(uint8(bits))
	case Int16:
		return int64(int16(bits))
	case Uint16:
		return int64(uint16(bits))
	case Int32:
		return int64(int32(bits))
	case Uint32:
		return int64(uint32(bits))
	case Float32, Float64:
		return int64(bitsToFloat64(t, bits))
	default:
		return 0
	}
}

func bitsToUint64(t ScalarType, bits uint64) uint64 {
	switch t {
	case Int8:
		return uint64(int8(bits))
	case Uint8:
		return uint64(uint8(bits))
	case Int16:
		return uint64(int16(bits))
	case Uint16:
		return uint64(uint16(bits))
	case Int32:
		return uint64(int32(bits))
	case Uint32:
		return uint64(uint32(bits))
	case Float32, Float64:
		return uint64(bitsToFloat64(t, bits))
	default:
		return 0
	}
}

// intToBits packs v into the low bytes for integer type t without range
// checking; the caller must have validated the range.
func intToBits(t ScalarType, v int64) uint64 {
	switch t {
	case Int8, Uint8:
		return uint64(uint8(v))
	case Int16, Uint16:
		return uint64(uint16(v))
	case Int32, Uint32:
		return uint64(uint32(v))
	default:
		return uint64(v)
	}
}

// int64ToBits converts v into type t, rejecting values t cannot represent.
func int64ToBits(t ScalarType, v int64) (uint64, error) {
	switch {
	case t == Float64:
		return math.Float64bits(float64(v)), nil
	case t == Float32:
		return uint64(math.Float32bits(float32(v))), nil
	case t.IsSigned():
		if v < t.intMin() || v > t.intMax() {
			return 0, errBodyf(ErrValue, "", -1, "", "value %d out of range for %s", v, t)
		}
		return intToBits(t, v), nil
	default:
		if v < 0 || uint64(v) > t.uintMax() {
			return 0, errBodyf(ErrValue, "", -1, "", "value %d out of range for %s", v, t)
		}
		return intToBits(t, v), nil
	}
}

// uint64ToBits converts v into type t, rejecting values t cannot represent.
func uint64ToBits(t ScalarType, v uint64) (uint64, error) {
	switch {
	case t == Float64:
		return math.Float64bits(float64(v)), nil
	case t == Float32:
		return uint64(math.Float32bits(float32(v))), nil
	case t.IsSigned():
		if v > uint64(t.intMax()) {
			return 0, errBodyf(ErrValue, "", -1, "", "value %d out of range for %s", v, t)
		}
		return intToBits(t, int64(v)), nil
	default:
		if v > t.uintMax() {
			return 0, errBodyf(ErrValue, "", -1, "", "value %d out of range for %s", v, t)
		}
		return intToBits(t, int64(v)), nil
	}
}

// float64ToBits converts v into type t. Integer targets reject non-integral
// and out-of-range values; Float32 rejects finite values that overflow.
func float64ToBits(t ScalarType, v float64) (uint64, error) {
	switch t {
	case Float64:
		return math.Float64bits(v), nil
	case Float32:
		f := float32(v)
		if math.IsInf(float64(f), 0) && !math.IsInf(v, 0) {
			return 0, errBodyf(ErrValue, "", -1, "", "value %g overflows float32", v)
		}
		return uint64(math.Float32bits(f)), nil
	default:
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Trunc(v) != v {
			return 0, errBodyf(ErrValue, "", -1, "", "value %g is not representable as %s", v, t)
		}
		if t.IsSigned() {
			if v < float64(t.intMin()) || v > float64(t.intMax()) {
				return 0, errBodyf(ErrValue, "", -1, "", "value %g out of range for %s", v, t)
			}
			return intToBits(t, int64(v)), nil
		}
		if v < 0 || v > float64(t.uintMax()) {
			return 0, errBodyf(ErrValue, "", -1, "", "value %g out of range for %s", v, t)
		}
		return intToBits(t, int64(v)), nil
	}
}

// float64ToBitsUnchecked packs v into float bits without range checking;
// used when v is already known to originate from a value of type t.
func float64ToBitsUnchecked(t ScalarType, v float64) uint64 {
	if t == Float32 {
		return uint64(math.Float32bits(float32(v)))
	}
	return math.Float64bits(v)
}

// castBits reinterprets bits of type from as type to. Identity casts are
// free; lossy casts fail unless the value fits the target exactly (integer
// narrowing of in-range values is allowed, as is any cast from an integer
// into a float; a finite float64 that overflows float32 fails).
func castBits(bits uint64, from, to ScalarType) (uint64, error) {
	if from == to {
		return bits, nil
	}
	switch {
	case from.IsFloat():
		return float64ToBits(to, bitsToFloat64(from, bits))
	case from.IsSigned():
		return int64ToBits(to, bitsToInt64(from, bits))
	default:
		return uint64ToBits(to, bitsToUint64(from, bits))
	}
}

// parseASCIIScalar parses one whitespace-free token as type t. Integer
// overflow and malformed literals are errors.
func parseASCIIScalar(tok string, t ScalarType) (uint64, error) {
	switch {
	case t.IsFloat():
		v, err := strconv.ParseFloat(tok, t.bits())
		if err != nil {
			return 0, errBodyf(ErrValue, "", -1, "", "bad %s literal %q", t, tok).wrap(err)
		}
		if t == Float32 {
			return uint64(math.Float32bits(float32(v))), nil
		}
		return math.Float64bits(v), nil
	case t.IsSigned():
		v, err := strconv.ParseInt(tok, 10, t.bits())
		if err != nil {
			return 0, errBodyf(ErrValue, "", -1, "", "bad %s literal %q", t, tok).wrap(err)
		}
		return intToBits(t, v), nil
	default:
		v, err := strconv.ParseUint(tok, 10, t.bits())
		if err != nil {
			return 0, errBodyf(ErrValue, "", -1, "", "bad %s literal %q", t, tok).wrap(err)
		}
		return intToBits(t, int64(v)), nil
	}
}

// formatASCIIScalar renders bits of type t as a round-trippable token.
func formatASCIIScalar(bits uint64, t ScalarType) string {
	switch {
	case t.IsFloat():
		return strconv.FormatFloat(bitsToFloat64(t, bits), 'g', -1, t.bits())
	case t.IsSigned():
		return strconv.FormatInt(bitsToInt64(t, bits), 10)
	default:
		return strconv.FormatUint(bitsToUint64(t, bits), 10)
	}
}

// maxListLen caps list length prefixes; anything above it is treated as a
// corrupt prefix rather than an allocation request.
const maxListLen = math.MaxInt32

// listLenFromBits interprets a length prefix of type t. Negative and
// implausibly large prefixes are errors.
func listLenFromBits(t ScalarType, bits uint64) (int, error) {
	if t.IsSigned() {
		v := bitsToInt64(t, bits)
		if v < 0 {
			return 0, errBodyf(ErrBody, "", -1, "", "negative list length %d", v)
		}
		return int(v), nil
	}
	v := bitsToUint64(t, bits)
	if v > maxListLen {
		return 0, errBodyf(ErrBody, "", -1, "", "list length %d too large", v)
	}
	return int(v), nil
}
