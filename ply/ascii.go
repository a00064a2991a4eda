package ply

import (
	"bytes"
	"io"
	"strings"
)

// decodeASCIIBody parses count rows of whitespace-separated tokens into
// owned columnar storage. Rows must match the schema exactly: a missing
// token and a leftover token are both errors, and blank lines are not
// tolerated inside a body.
func decodeASCIIBody(lr *lineReader, e *Element) error {
	for pi, p := range e.props {
		if p.IsList() {
			e.lists[pi] = newListStore(p.Type, e.count)
		} else {
			e.scalars[pi] = newScalarStore(p.Type, e.count)
		}
	}

	for i := 0; i < e.count; i++ {
		raw, err := lr.readLine()
		if err == io.EOF {
			return errBodyf(ErrBody, e.name, i, "", "unexpected end of input, want %d rows", e.count)
		}
		if err != nil {
			return ioError(e.name, i, err)
		}
		toks := strings.Fields(raw)
		if len(toks) == 0 {
			return errBodyf(ErrBody, e.name, i, "", "empty row")
		}

		pos := 0
		next := func() (string, bool) {
			if pos >= len(toks) {
				return "", false
			}
			tok := toks[pos]
			pos++
			return tok, true
		}

		for pi, p := range e.props {
			if p.IsList() {
				lenTok, ok := next()
				if !ok {
					return errBodyf(ErrBody, e.name, i, p.Name, "missing list length")
				}
				lenBits, err := parseASCIIScalar(lenTok, p.LenType)
				if err != nil {
					return annotate(err, e.name, i, p.Name)
				}
				k, err := listLenFromBits(p.LenType, lenBits)
				if err != nil {
					return annotate(err, e.name, i, p.Name)
				}
				e.lists[pi].resizeRow(i, k)
				for j := 0; j < k; j++ {
					tok, ok := next()
					if !ok {
						return errBodyf(ErrBody, e.name, i, p.Name,
							"short row: list has %d of %d values", j, k)
					}
					bits, err := parseASCIIScalar(tok, p.Type)
					if err != nil {
						return annotate(err, e.name, i, p.Name)
					}
					e.lists[pi].setBits(i, j, bits)
				}
				continue
			}

			tok, ok := next()
			if !ok {
				return errBodyf(ErrBody, e.name, i, p.Name, "short row: missing value")
			}
			bits, err := parseASCIIScalar(tok, p.Type)
			if err != nil {
				return annotate(err, e.name, i, p.Name)
			}
			e.scalars[pi].setBits(i, bits)
		}

		if pos != len(toks) {
			return errBodyf(ErrBody, e.name, i, "", "long row: %d extra tokens", len(toks)-pos)
		}
	}
	return nil
}

// encodeASCIIBody renders the element body as space-separated fields with
// LF row terminators, casting storage values into the declared types.
func encodeASCIIBody(b *bytes.Buffer, e *Element) error {
	for i := 0; i < e.count; i++ {
		first := true
		emit := func(tok string) {
			if !first {
				b.WriteByte(' ')
			}
			b.WriteString(tok)
			first = false
		}
		for pi, p := range e.props {
			if p.IsList() {
				k := e.listLen(pi, i)
				lenBits, err := int64ToBits(p.LenType, int64(k))
				if err != nil {
					return annotate(err, e.name, i, p.Name)
				}
				emit(formatASCIIScalar(lenBits, p.LenType))
				for j := 0; j < k; j++ {
					bits, err := e.declaredListBits(pi, i, j)
					if err != nil {
						return annotate(err, e.name, i, p.Name)
					}
					emit(formatASCIIScalar(bits, p.Type))
				}
				continue
			}
			bits, err := e.declaredBits(pi, i)
			if err != nil {
				return annotate(err, e.name, i, p.Name)
			}
			emit(formatASCIIScalar(bits, p.Type))
		}
		b.WriteByte('\n')
	}
	return nil
}
