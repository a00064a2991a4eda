package ply

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// lineReader reads header and ASCII body lines, accepting LF, CRLF, and
// lone-CR terminators. It tracks the 1-based line index for error context
// and the number of source bytes consumed so mapped reads can locate the
// body.
type lineReader struct {
	br       *bufio.Reader
	line     int
	consumed int64
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{br: bufio.NewReaderSize(r, 64*1024)}
}

// readLine returns the next line without its terminator. io.EOF is returned
// only when no bytes remain; a final unterminated line is returned as-is.
func (lr *lineReader) readLine() (string, error) {
	var raw []byte
	for {
		b, err := lr.br.ReadByte()
		if err == io.EOF {
			if len(raw) == 0 {
				return "", io.EOF
			}
			break
		}
		if err != nil {
			return "", err
		}
		lr.consumed++
		if b == '\n' {
			break
		}
		if b == '\r' {
			// CRLF counts as one terminator; a lone CR also terminates.
			next, err := lr.br.ReadByte()
			if err == nil {
				if next == '\n' {
					lr.consumed++
				} else {
					_ = lr.br.UnreadByte()
				}
			}
			break
		}
		raw = append(raw, b)
	}
	lr.line++
	return decodeHeaderLine(raw), nil
}

// decodeHeaderLine tolerates Latin-1 bytes in header lines; files predating
// UTF-8 carry such comments in the wild.
func decodeHeaderLine(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

// parseHeader consumes the header preamble through end_header and returns a
// File whose elements carry schemas and counts but no data yet.
func parseHeader(lr *lineReader) (*File, error) {
	first, err := lr.readLine()
	if err == io.EOF {
		return nil, errHeaderf(1, "empty input, missing %q magic", "ply")
	}
	if err != nil {
		return nil, ioError("", -1, err)
	}
	if first != "ply" {
		return nil, errHeaderf(lr.line, "bad magic %q, want %q", first, "ply")
	}

	f := &File{version: "1.0", order: OrderLittle}
	formatSeen := false
	seen := make(map[string]bool)
	var cur *Element

	closeBlock := func() error {
		if cur != nil && len(cur.props) == 0 {
			return errHeaderf(lr.line, "element %q declares no properties", cur.name)
		}
		return nil
	}

	for {
		raw, err := lr.readLine()
		if err == io.EOF {
			return nil, errHeaderf(lr.line, "premature end of header, missing %q", "end_header")
		}
		if err != nil {
			return nil, ioError("", -1, err)
		}
		fields := strings.Fields(raw)
		if len(fields) == 0 {
			continue // tolerate blank header lines
		}
		switch fields[0] {
		case "format":
			if formatSeen {
				return nil, errHeaderf(lr.line, "duplicate format line")
			}
			if len(fields) != 3 {
				return nil, errHeaderf(lr.line, "malformed format line")
			}
			switch fields[1] {
			case "ascii":
				f.text = true
			case "binary_little_endian":
				f.order = OrderLittle
			case "binary_big_endian":
				f.order = OrderBig
			default:
				return nil, errHeaderf(lr.line, "unknown format %q", fields[1])
			}
			if fields[2] != "1.0" {
				return nil, errHeaderf(lr.line, "unsupported version %q", fields[2])
			}
			formatSeen = true
		case "comment":
			text := trailingText(raw, "comment")
			if cur != nil {
				cur.comments = append(cur.comments, text)
			} else {
				f.comments = append(f.comments, text)
			}
		case "obj_info":
			if cur != nil {
				return nil, errHeaderf(lr.line, "obj_info inside element block %q", cur.name)
			}
			f.objInfo = append(f.objInfo, trailingText(raw, "obj_info"))
		case "element":
			if !formatSeen {
				return nil, errHeaderf(lr.line, "element before format line")
			}
			if err := closeBlock(); err != nil {
				return nil, err
			}
			if len(fields) != 3 {
				return nil, errHeaderf(lr.line, "malformed element line")
			}
			name := fields[1]
			if seen[name] {
				return nil, errHeaderf(lr.line, "duplicate element name %q", name)
			}
			count, err := strconv.ParseUint(fields[2], 10, 64)
			if err != nil {
				return nil, errHeaderf(lr.line, "malformed count %q", fields[2]).wrap(err)
			}
			if count > uint64(maxInt) {
				return nil, errHeaderf(lr.line, "count %s too large to materialize", fields[2])
			}
			seen[name] = true
			cur = newElement(name, int(count))
			f.elements = append(f.elements, cur)
		case "property":
			if cur == nil {
				return nil, errHeaderf(lr.line, "property outside an element block")
			}
			p, err := parsePropertyLine(fields[1:], lr.line)
			if err != nil {
				return nil, err
			}
			if err := cur.addProperty(p); err != nil {
				return nil, errHeaderf(lr.line, "duplicate property name %q in element %q", p.Name, cur.name)
			}
		case "end_header":
			if !formatSeen {
				return nil, errHeaderf(lr.line, "missing format line")
			}
			if err := closeBlock(); err != nil {
				return nil, err
			}
			if len(f.elements) == 0 {
				return nil, errHeaderf(lr.line, "header declares no elements")
			}
			return f, nil
		default:
			return nil, errHeaderf(lr.line, "unknown keyword %q", fields[0])
		}
	}
}

const maxInt = int64(^uint(0) >> 1)

// trailingText extracts the text of a comment or obj_info line: everything
// past the keyword and one separator. Leading whitespace of the text is
// preserved; trailing whitespace is not.
func trailingText(raw, keyword string) string {
	rest := strings.TrimLeft(raw, " \t")
	rest = rest[len(keyword):]
	if len(rest) > 0 && (rest[0] == ' ' || rest[0] == '\t') {
		rest = rest[1:]
	}
	return strings.TrimRight(rest, " \t")
}

// headerBytes renders the canonical header: LF terminators, explicit type
// spellings, container comments then obj_info then element blocks.
func (f *File) headerBytes() ([]byte, error) {
	if len(f.elements) == 0 {
		return nil, errBodyf(ErrSchema, "", -1, "", "file has no elements")
	}
	seen := make(map[string]bool)
	for _, e := range f.elements {
		if err := validateName(e.name); err != nil {
			return nil, err
		}
		if seen[e.name] {
			return nil, errBodyf(ErrName, e.name, -1, "", "duplicate element name %q", e.name)
		}
		seen[e.name] = true
		for _, p := range e.props {
			if err := p.validate(); err != nil {
				return nil, err
			}
		}
		for _, c := range e.comments {
			if err := validateComment(c); err != nil {
				return nil, err
			}
		}
	}
	for _, c := range f.comments {
		if err := validateComment(c); err != nil {
			return nil, err
		}
	}
	for _, o := range f.objInfo {
		if err := validateComment(o); err != nil {
			return nil, err
		}
	}

	var b bytes.Buffer
	b.WriteString("ply\n")
	fmt.Fprintf(&b, "format %s 1.0\n", f.Format())
	for _, c := range f.comments {
		b.WriteString("comment " + c + "\n")
	}
	for _, o := range f.objInfo {
		b.WriteString("obj_info " + o + "\n")
	}
	for _, e := range f.elements {
		for _, line := range e.HeaderLines() {
			b.WriteString(line + "\n")
		}
	}
	b.WriteString("end_header\n")
	return b.Bytes(), nil
}
