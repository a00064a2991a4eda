package ply

import (
	"errors"
	"fmt"
	"strings"
)

// Category sentinels. Every *ParseError wraps exactly one of these, so
// callers can classify failures with errors.Is.
var (
	// ErrHeader indicates a syntax or semantics violation in the header.
	ErrHeader = errors.New("ply: malformed header")
	// ErrBody indicates a structural problem in an element body.
	ErrBody = errors.New("ply: malformed body")
	// ErrValue indicates a bad literal, an overflow, or an unrepresentable cast.
	ErrValue = errors.New("ply: bad value")
	// ErrListLength indicates a list length prefix that contradicts a
	// caller-declared known list length.
	ErrListLength = errors.New("ply: list length mismatch")
	// ErrSchema indicates a row table that does not satisfy its element schema.
	ErrSchema = errors.New("ply: schema mismatch")
	// ErrName indicates an element or property name, or a comment or
	// obj_info text, unfit for emission.
	ErrName = errors.New("ply: bad name")
	// ErrIO wraps a failure of the underlying source or sink.
	ErrIO = errors.New("ply: i/o failure")
)

// ParseError is the single error kind surfaced by reads and writes. The
// context fields are filled with the richest information available at the
// failure site: header errors carry Line, body errors carry Element and
// usually Row and Property.
type ParseError struct {
	Msg      string
	Line     int    // 1-based header line; 0 when not applicable
	Element  string // element being parsed or written
	Row      int    // row index within the element; -1 when not applicable
	Property string // offending property

	cat   error // category sentinel
	cause error // underlying error, if any
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("ply: ")
	if e.Element != "" {
		fmt.Fprintf(&b, "element %q: ", e.Element)
		if e.Row >= 0 {
			fmt.Fprintf(&b, "row %d: ", e.Row)
		}
		if e.Property != "" {
			fmt.Fprintf(&b, "property %q: ", e.Property)
		}
	}
	b.WriteString(e.Msg)
	if e.Line > 0 {
		fmt.Fprintf(&b, " (header line %d)", e.Line)
	}
	if e.cause != nil {
		fmt.Fprintf(&b, ": %v", e.cause)
	}
	return b.String()
}

func (e *ParseError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.cat != nil {
		errs = append(errs, e.cat)
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

// errHeaderf builds a header-scoped ParseError carrying a line index.
func errHeaderf(line int, format string, args ...any) *ParseError {
	return &ParseError{
		Msg:  fmt.Sprintf(format, args...),
		Line: line,
		Row:  -1,
		cat:  ErrHeader,
	}
}

// errBodyf builds a body-scoped ParseError. Row may be -1 when the row is
// unknown; property may be empty.
func errBodyf(cat error, element string, row int, property string, format string, args ...any) *ParseError {
	return &ParseError{
		Msg:      fmt.Sprintf(format, args...),
		Element:  element,
		Row:      row,
		Property: property,
		cat:      cat,
	}
}

// wrap attaches an underlying cause and returns the receiver.
func (e *ParseError) wrap(err error) *ParseError {
	e.cause = err
	return e
}

// annotate fills missing context fields of a ParseError in flight; other
// error kinds are wrapped into a value error with the given context.
func annotate(err error, element string, row int, property string) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		if pe.Element == "" {
			pe.Element = element
		}
		if pe.Row < 0 {
			pe.Row = row
		}
		if pe.Property == "" {
			pe.Property = property
		}
		return err
	}
	return errBodyf(ErrValue, element, row, property, "%v", err)
}

// ioError wraps a source or sink failure with whatever context is available.
func ioError(element string, row int, err error) *ParseError {
	return &ParseError{
		Msg:     "read failed",
		Element: element,
		Row:     row,
		cat:     ErrIO,
		cause:   err,
	}
}
