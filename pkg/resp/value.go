package resp

import (
	"bytes"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

// Value kinds. The zero Kind is Null so the zero Value is a valid null.
const (
	KindNull Kind = iota
	KindSimpleString
	KindError
	KindInteger
	KindBulkString
	KindArray
	KindBoolean
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindSimpleString:
		return "simple-string"
	case KindError:
		return "error"
	case KindInteger:
		return "integer"
	case KindBulkString:
		return "bulk-string"
	case KindArray:
		return "array"
	case KindBoolean:
		return "boolean"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a single RESP value.
//
// Only the fields matching Kind are meaningful. Nil marks the nil form of a
// bulk string or array; it is ignored for every other kind.
type Value struct {
	Kind  Kind
	Str   string  // simple string, error
	Int   int64   // integer
	Bulk  []byte  // bulk string
	Array []Value // array
	Bool  bool    // boolean
	Nil   bool    // nil bulk string, nil array
}

// SimpleString returns a "+" value.
func SimpleString(s string) Value { return Value{Kind: KindSimpleString, Str: s} }

// Error returns a "-" value.
func Error(msg string) Value { return Value{Kind: KindError, Str: msg} }

// Integer returns a ":" value.
func Integer(n int64) Value { return Value{Kind: KindInteger, Int: n} }

// BulkString returns a non-nil "$" value holding b.
func BulkString(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{Kind: KindBulkString, Bulk: b}
}

// BulkText returns a non-nil "$" value holding s.
func BulkText(s string) Value { return BulkString([]byte(s)) }

// NilBulkString returns "$-1".
func NilBulkString() Value { return Value{Kind: KindBulkString, Nil: true} }

// Array returns a non-nil "*" value holding elems.
func Array(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{Kind: KindArray, Array: elems}
}

// NilArray returns "*-1".
func NilArray() Value { return Value{Kind: KindArray, Nil: true} }

// Boolean returns a "#" value.
func Boolean(b bool) Value { return Value{Kind: KindBoolean, Bool: b} }

// Null returns "_".
func Null() Value { return Value{Kind: KindNull} }

// IsNil reports whether v is a nil bulk string or nil array.
func (v Value) IsNil() bool {
	return v.Nil && (v.Kind == KindBulkString || v.Kind == KindArray)
}

// Text returns the payload of a string-like value: a simple string or a
// non-nil bulk string.
func (v Value) Text() (string, bool) {
	switch {
	case v.Kind == KindSimpleString:
		return v.Str, true
	case v.Kind == KindBulkString && !v.Nil:
		return string(v.Bulk), true
	default:
		return "", false
	}
}

// Equal reports whether v and o encode to the same bytes.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindSimpleString, KindError:
		return v.Str == o.Str
	case KindInteger:
		return v.Int == o.Int
	case KindBoolean:
		return v.Bool == o.Bool
	case KindBulkString:
		if v.Nil || o.Nil {
			return v.Nil == o.Nil
		}
		return bytes.Equal(v.Bulk, o.Bulk)
	case KindArray:
		if v.Nil || o.Nil {
			return v.Nil == o.Nil
		}
		if len(v.Array) != len(o.Array) {
			return false
		}
		for i := range v.Array {
			if !v.Array[i].Equal(o.Array[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders v for logs and test failures.
func (v Value) String() string {
	var sb strings.Builder
	v.format(&sb)
	return sb.String()
}

func (v Value) format(sb *strings.Builder) {
	switch v.Kind {
	case KindSimpleString:
		sb.WriteString("+" + strconv.Quote(v.Str))
	case KindError:
		sb.WriteString("-" + strconv.Quote(v.Str))
	case KindInteger:
		sb.WriteString(":" + strconv.FormatInt(v.Int, 10))
	case KindBoolean:
		sb.WriteString("#" + strconv.FormatBool(v.Bool))
	case KindBulkString:
		if v.Nil {
			sb.WriteString("$nil")
			return
		}
		sb.WriteString("$" + strconv.Quote(string(v.Bulk)))
	case KindArray:
		if v.Nil {
			sb.WriteString("*nil")
			return
		}
		sb.WriteString("[")
		for i, e := range v.Array {
			if i > 0 {
				sb.WriteString(" ")
			}
			e.format(sb)
		}
		sb.WriteString("]")
	default:
		sb.WriteString("_")
	}
}
