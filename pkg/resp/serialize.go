package resp

import (
	"strconv"
	"strings"
)

// lineSafe replaces CR and LF, which would end a "+" or "-" line early.
var lineSafe = strings.NewReplacer("\r", " ", "\n", " ")

// Serialize encodes v. It never fails: the zero Value encodes as null.
func Serialize(v Value) []byte {
	return AppendValue(nil, v)
}

// AppendValue appends the encoding of v to dst and returns the extended slice.
// CR and LF inside simple string and error text are written as spaces so
// one value always encodes as one frame.
func AppendValue(dst []byte, v Value) []byte {
	switch v.Kind {
	case KindSimpleString:
		dst = append(dst, '+')
		dst = appendLine(dst, v.Str)
	case KindError:
		dst = append(dst, '-')
		dst = appendLine(dst, v.Str)
	case KindInteger:
		dst = append(dst, ':')
		dst = strconv.AppendInt(dst, v.Int, 10)
	case KindBulkString:
		if v.Nil {
			return append(dst, "$-1\r\n"...)
		}
		dst = append(dst, '$')
		dst = strconv.AppendInt(dst, int64(len(v.Bulk)), 10)
		dst = append(dst, crlf...)
		dst = append(dst, v.Bulk...)
	case KindArray:
		if v.Nil {
			return append(dst, "*-1\r\n"...)
		}
		dst = append(dst, '*')
		dst = strconv.AppendInt(dst, int64(len(v.Array)), 10)
		dst = append(dst, crlf...)
		for _, e := range v.Array {
			dst = AppendValue(dst, e)
		}
		return dst
	case KindBoolean:
		if v.Bool {
			return append(dst, "#t\r\n"...)
		}
		return append(dst, "#f\r\n"...)
	default:
		return append(dst, "_\r\n"...)
	}
	return append(dst, crlf...)
}

func appendLine(dst []byte, s string) []byte {
	if strings.ContainsAny(s, "\r\n") {
		s = lineSafe.Replace(s)
	}
	return append(dst, s...)
}
