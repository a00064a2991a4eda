package ply

import (
	"fmt"
	"unicode"
)

// Property describes one column of an element: a fixed-width scalar, or a
// variable-length list of scalars behind a length prefix. LenType is zero
// for scalar properties.
type Property struct {
	Name    string
	Type    ScalarType // value type
	LenType ScalarType // length prefix type; zero for scalar properties
}

// NewProperty returns a scalar property.
func NewProperty(name string, t ScalarType) Property {
	return Property{Name: name, Type: t}
}

// NewListProperty returns a list property with the given length prefix type
// and value type.
func NewListProperty(name string, lenType, valueType ScalarType) Property {
	return Property{Name: name, Type: valueType, LenType: lenType}
}

// IsList reports whether the property is a list property.
func (p Property) IsList() bool { return p.LenType != typeInvalid }

// HeaderLine returns the canonical header representation, using the
// explicit width-bearing type spellings.
func (p Property) HeaderLine() string {
	if p.IsList() {
		return fmt.Sprintf("property list %s %s %s", p.LenType, p.Type, p.Name)
	}
	return fmt.Sprintf("property %s %s", p.Type, p.Name)
}

// fixedWidth returns the per-row on-disk size and true for scalar
// properties; list properties have no fixed contribution.
func (p Property) fixedWidth() (int, bool) {
	if p.IsList() {
		return 0, false
	}
	return p.Type.ByteWidth(), true
}

// validate checks the property for emission and construction.
func (p Property) validate() error {
	if err := validateName(p.Name); err != nil {
		return err
	}
	if !p.Type.valid() {
		return errBodyf(ErrSchema, "", -1, p.Name, "invalid value type")
	}
	if p.LenType != typeInvalid {
		if !p.LenType.valid() {
			return errBodyf(ErrSchema, "", -1, p.Name, "invalid list length type")
		}
		if p.LenType.IsFloat() {
			return errBodyf(ErrSchema, "", -1, p.Name, "list length type %s is not an integer type", p.LenType)
		}
	}
	return nil
}

// parsePropertyLine parses the fields of a header property line (everything
// after the "property" keyword). line is used for error context.
func parsePropertyLine(fields []string, line int) (Property, error) {
	if len(fields) > 0 && fields[0] == "list" {
		if len(fields) != 4 {
			return Property{}, errHeaderf(line, "malformed list property line")
		}
		lenType, err := ParseScalarType(fields[1])
		if err != nil {
			return Property{}, errHeaderf(line, "unknown list length type %q", fields[1])
		}
		if lenType.IsFloat() {
			return Property{}, errHeaderf(line, "list length type %q is not an integer type", fields[1])
		}
		valType, err := ParseScalarType(fields[2])
		if err != nil {
			return Property{}, errHeaderf(line, "unknown list value type %q", fields[2])
		}
		return NewListProperty(fields[3], lenType, valType), nil
	}
	if len(fields) != 2 {
		return Property{}, errHeaderf(line, "malformed property line")
	}
	t, err := ParseScalarType(fields[0])
	if err != nil {
		return Property{}, errHeaderf(line, "unknown type %q", fields[0])
	}
	return NewProperty(fields[1], t), nil
}

// headerKeywords are reserved words a name must not collide with, since the
// emitted header would no longer parse unambiguously.
var headerKeywords = map[string]bool{
	"ply":        true,
	"format":     true,
	"comment":    true,
	"obj_info":   true,
	"element":    true,
	"property":   true,
	"list":       true,
	"end_header": true,
}

// validateName enforces the rules for element and property names on
// emission: non-empty, no whitespace, no control characters, and no
// collision with a header keyword.
func validateName(name string) error {
	if name == "" {
		return errBodyf(ErrName, "", -1, "", "empty name")
	}
	for _, r := range name {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return errBodyf(ErrName, "", -1, name, "name %q contains whitespace or control characters", name)
		}
	}
	if headerKeywords[name] {
		return errBodyf(ErrName, "", -1, name, "name %q collides with a header keyword", name)
	}
	return nil
}
