package output

import (
	"fmt"
	"io"

	"github.com/yndnr/respkv/pkg/resp"
)

// Format represents the output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatRaw  Format = "raw"
)

// Formatter writes a reply to w.
type Formatter interface {
	Format(w io.Writer, v resp.Value) error
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON, FormatYAML, FormatRaw:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json, yaml or raw)", s)
	}
}

// NewFormatter creates a formatter for the given format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	case FormatRaw:
		return &RawFormatter{}
	default:
		return &TextFormatter{}
	}
}

// RawFormatter writes the wire encoding of the reply.
type RawFormatter struct{}

// Format writes resp.Serialize(v).
func (f *RawFormatter) Format(w io.Writer, v resp.Value) error {
	_, err := w.Write(resp.Serialize(v))
	return err
}

// toPlain converts v into JSON/YAML friendly values. Error replies become
// a single-key map so they stay distinguishable from strings.
func toPlain(v resp.Value) any {
	switch v.Kind {
	case resp.KindSimpleString:
		return v.Str
	case resp.KindError:
		return map[string]string{"error": v.Str}
	case resp.KindInteger:
		return v.Int
	case resp.KindBoolean:
		return v.Bool
	case resp.KindBulkString:
		if v.Nil {
			return nil
		}
		return string(v.Bulk)
	case resp.KindArray:
		if v.Nil {
			return nil
		}
		out := make([]any, len(v.Array))
		for i, e := range v.Array {
			out[i] = toPlain(e)
		}
		return out
	default:
		return nil
	}
}
