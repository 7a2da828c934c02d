package resp

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Parse errors. They are wrapped with position detail; use errors.Is.
var (
	// ErrUnexpectedEOF means the buffer ends before the value does. More
	// bytes may complete it.
	ErrUnexpectedEOF = errors.New("resp: unexpected end of input")
	// ErrInvalidEncoding means a text field is not valid UTF-8.
	ErrInvalidEncoding = errors.New("resp: invalid encoding")
	// ErrInvalidNumber means a length or integer field is not a number.
	ErrInvalidNumber = errors.New("resp: invalid number")
	// ErrInvalidElement means a nested value has an unknown prefix or a
	// field is malformed.
	ErrInvalidElement = errors.New("resp: invalid element")
)

// MaxDepth is the deepest array nesting Parse accepts. The top-level array
// is depth 1.
const MaxDepth = 512

// MaxLength bounds a bulk string length or an array count, the same bound
// Redis applies to bulk lengths.
const MaxLength = 512 << 20

var (
	crlf       = []byte("\r\n")
	inlinePing = []byte("PING\r\n")
)

// Parse decodes the single value at the start of buf. Bytes after that value
// are ignored; use ParsePrefix to learn where it ended.
//
// ok is false, with a nil error, when buf does not start with a recognized
// type byte. Callers must treat that as "no valid frame", not as success.
// Returned values never alias buf.
func Parse(buf []byte) (v Value, ok bool, err error) {
	v, n, err := ParsePrefix(buf)
	if err != nil {
		return Value{}, false, err
	}
	return v, n > 0, nil
}

// ParsePrefix decodes the value at the start of buf and reports how many
// bytes it occupied. n is 0, with a nil error, when buf does not start with a
// recognized type byte.
func ParsePrefix(buf []byte) (v Value, n int, err error) {
	if len(buf) == 0 {
		return Value{}, 0, nil
	}

	p := &parser{buf: buf}
	if buf[0] == 'P' {
		return p.inline()
	}
	if !isTypeByte(buf[0]) {
		return Value{}, 0, nil
	}
	v, err = p.value()
	if err != nil {
		return Value{}, 0, err
	}
	return v, p.pos, nil
}

func isTypeByte(b byte) bool {
	switch b {
	case '+', '-', ':', '$', '*', '#', '_':
		return true
	}
	return false
}

type parser struct {
	buf   []byte
	pos   int
	depth int
}

// inline handles the pre-RESP "PING\r\n" form.
func (p *parser) inline() (Value, int, error) {
	if len(p.buf) < len(inlinePing) {
		return Value{}, 0, fmt.Errorf("%w: inline command needs %d bytes, have %d",
			ErrUnexpectedEOF, len(inlinePing), len(p.buf))
	}
	if !bytes.Equal(p.buf[:len(inlinePing)], inlinePing) {
		return Value{}, 0, nil
	}
	return Array(SimpleString("PING")), len(inlinePing), nil
}

func (p *parser) value() (Value, error) {
	if p.pos >= len(p.buf) {
		return Value{}, fmt.Errorf("%w: expected value at offset %d", ErrUnexpectedEOF, p.pos)
	}

	prefix := p.buf[p.pos]
	p.pos++

	switch prefix {
	case '+':
		s, err := p.text()
		if err != nil {
			return Value{}, err
		}
		return SimpleString(s), nil
	case '-':
		s, err := p.text()
		if err != nil {
			return Value{}, err
		}
		return Error(s), nil
	case ':':
		n, err := p.number()
		if err != nil {
			return Value{}, err
		}
		return Integer(n), nil
	case '$':
		return p.bulk()
	case '*':
		return p.array()
	case '#':
		return p.boolean()
	case '_':
		if err := p.expectCRLF(); err != nil {
			return Value{}, err
		}
		return Null(), nil
	default:
		return Value{}, fmt.Errorf("%w: unexpected prefix %q at offset %d", ErrInvalidElement, prefix, p.pos-1)
	}
}

// line returns the bytes up to the next CRLF and moves past it.
func (p *parser) line() ([]byte, error) {
	idx := bytes.Index(p.buf[p.pos:], crlf)
	if idx < 0 {
		return nil, fmt.Errorf("%w: missing CRLF after offset %d", ErrUnexpectedEOF, p.pos)
	}
	l := p.buf[p.pos : p.pos+idx]
	p.pos += idx + len(crlf)
	return l, nil
}

func (p *parser) text() (string, error) {
	l, err := p.line()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(l) {
		return "", fmt.Errorf("%w: text field is not utf-8", ErrInvalidEncoding)
	}
	return string(l), nil
}

func (p *parser) number() (int64, error) {
	l, err := p.line()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(string(l), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, l)
	}
	return n, nil
}

// length reads a "$" or "*" header. isNil is true for -1.
func (p *parser) length() (n int, isNil bool, err error) {
	v, err := p.number()
	if err != nil {
		return 0, false, err
	}
	if v == -1 {
		return 0, true, nil
	}
	if v < 0 {
		return 0, false, fmt.Errorf("%w: negative length %d", ErrInvalidNumber, v)
	}
	if v > MaxLength {
		return 0, false, fmt.Errorf("%w: length %d exceeds limit %d", ErrInvalidNumber, v, MaxLength)
	}
	// Checked before anything is allocated for the payload.
	if v > int64(len(p.buf)) {
		return 0, false, fmt.Errorf("%w: length %d exceeds available %d bytes",
			ErrUnexpectedEOF, v, len(p.buf)-p.pos)
	}
	return int(v), false, nil
}

func (p *parser) bulk() (Value, error) {
	n, isNil, err := p.length()
	if err != nil {
		return Value{}, err
	}
	if isNil {
		return NilBulkString(), nil
	}
	if len(p.buf)-p.pos < n {
		return Value{}, fmt.Errorf("%w: bulk string needs %d bytes, have %d",
			ErrUnexpectedEOF, n, len(p.buf)-p.pos)
	}
	payload := bytes.Clone(p.buf[p.pos : p.pos+n])
	p.pos += n
	if err := p.expectCRLF(); err != nil {
		return Value{}, err
	}
	return BulkString(payload), nil
}

func (p *parser) array() (Value, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxDepth {
		return Value{}, fmt.Errorf("%w: arrays nested deeper than %d", ErrInvalidElement, MaxDepth)
	}

	n, isNil, err := p.length()
	if err != nil {
		return Value{}, err
	}
	if isNil {
		return NilArray(), nil
	}

	// Every element needs at least three bytes. A count the buffer cannot
	// hold is incomplete before any element is walked.
	if n > (len(p.buf)-p.pos)/3 {
		return Value{}, fmt.Errorf("%w: array of %d elements needs at least %d bytes, have %d",
			ErrUnexpectedEOF, n, 3*n, len(p.buf)-p.pos)
	}
	elems := make([]Value, 0, n)
	for i := 0; i < n; i++ {
		if p.pos >= len(p.buf) {
			return Value{}, fmt.Errorf("%w: array has %d of %d elements", ErrUnexpectedEOF, i, n)
		}
		if !isTypeByte(p.buf[p.pos]) {
			return Value{}, fmt.Errorf("%w: array element %d has prefix %q",
				ErrInvalidElement, i, p.buf[p.pos])
		}
		e, err := p.value()
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, e)
	}
	return Array(elems...), nil
}

func (p *parser) boolean() (Value, error) {
	l, err := p.line()
	if err != nil {
		return Value{}, err
	}
	switch string(l) {
	case "t":
		return Boolean(true), nil
	case "f":
		return Boolean(false), nil
	default:
		return Value{}, fmt.Errorf("%w: boolean %q", ErrInvalidElement, l)
	}
}

func (p *parser) expectCRLF() error {
	if len(p.buf)-p.pos < len(crlf) {
		return fmt.Errorf("%w: missing CRLF at offset %d", ErrUnexpectedEOF, p.pos)
	}
	if !bytes.Equal(p.buf[p.pos:p.pos+len(crlf)], crlf) {
		return fmt.Errorf("%w: expected CRLF at offset %d", ErrInvalidElement, p.pos)
	}
	p.pos += len(crlf)
	return nil
}
