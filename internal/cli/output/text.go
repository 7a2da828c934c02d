package output

import (
	"io"
	"strconv"
	"strings"

	"github.com/yndnr/respkv/pkg/resp"
)

// TextFormatter renders replies the way redis-cli does in a terminal.
type TextFormatter struct{}

// Format writes v followed by a newline.
func (f *TextFormatter) Format(w io.Writer, v resp.Value) error {
	var sb strings.Builder
	writeText(&sb, v, 0)
	sb.WriteByte('\n')
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeText(sb *strings.Builder, v resp.Value, indent int) {
	switch v.Kind {
	case resp.KindSimpleString:
		sb.WriteString(v.Str)
	case resp.KindError:
		sb.WriteString("(error) " + v.Str)
	case resp.KindInteger:
		sb.WriteString("(integer) " + strconv.FormatInt(v.Int, 10))
	case resp.KindBoolean:
		sb.WriteString("(" + strconv.FormatBool(v.Bool) + ")")
	case resp.KindBulkString:
		if v.Nil {
			sb.WriteString("(nil)")
			return
		}
		sb.WriteString(strconv.Quote(string(v.Bulk)))
	case resp.KindArray:
		writeArray(sb, v, indent)
	default:
		sb.WriteString("(nil)")
	}
}

func writeArray(sb *strings.Builder, v resp.Value, indent int) {
	if v.Nil {
		sb.WriteString("(nil)")
		return
	}
	if len(v.Array) == 0 {
		sb.WriteString("(empty array)")
		return
	}

	width := len(strconv.Itoa(len(v.Array)))
	for i, e := range v.Array {
		if i > 0 {
			sb.WriteByte('\n')
			sb.WriteString(strings.Repeat(" ", indent))
		}
		label := strconv.Itoa(i + 1)
		sb.WriteString(strings.Repeat(" ", width-len(label)) + label + ") ")
		writeText(sb, e, indent+width+2)
	}
}
