package command

import (
	"math"
	"strconv"
	"strings"

	"github.com/yndnr/respkv/pkg/resp"
)

// Extract validates a parsed request and returns the command it names.
//
// The request must be a non-nil, non-empty array whose first element is a
// simple string or non-nil bulk string; the name is matched
// case-insensitively.
func Extract(req resp.Value) (Command, error) {
	if req.Kind != resp.KindArray || req.Nil || len(req.Array) == 0 {
		return nil, ErrNotACommand
	}
	name, ok := req.Array[0].Text()
	if !ok {
		return nil, ErrNotACommand
	}
	args := req.Array[1:]

	switch strings.ToUpper(name) {
	case "PING":
		return extractPing(args)
	case "ECHO":
		return extractEcho(args)
	case "GET":
		return extractGet(args)
	case "SET":
		return extractSet(args)
	case "CONFIG":
		return Config{}, nil
	case "COMMAND":
		return Introspect{}, nil
	default:
		return nil, unknownCommand(name)
	}
}

func extractPing(args []resp.Value) (Command, error) {
	switch len(args) {
	case 0:
		return Ping{Reply: resp.SimpleString("PONG")}, nil
	case 1:
		msg, ok := args[0].Text()
		if !ok {
			return nil, wrongType("ping")
		}
		return Ping{Reply: resp.BulkText(msg)}, nil
	default:
		return nil, wrongArity("ping")
	}
}

func extractEcho(args []resp.Value) (Command, error) {
	if len(args) != 1 {
		return nil, wrongArity("echo")
	}
	msg, ok := args[0].Text()
	if !ok {
		return nil, wrongType("echo")
	}
	return Echo{Reply: resp.BulkText(msg)}, nil
}

func extractGet(args []resp.Value) (Command, error) {
	if len(args) != 1 {
		return nil, wrongArity("get")
	}
	key, ok := args[0].Text()
	if !ok {
		return nil, wrongType("get")
	}
	return Get{Key: resp.BulkText(key)}, nil
}

func extractSet(args []resp.Value) (Command, error) {
	if len(args) < 2 {
		return nil, wrongArity("set")
	}
	key, ok := args[0].Text()
	if !ok {
		return nil, wrongType("set")
	}
	value, ok := args[1].Text()
	if !ok {
		return nil, wrongType("set")
	}

	cmd := Set{Key: resp.BulkText(key), Value: resp.BulkText(value)}

	// Options come in token/value pairs. A later EX or PX overwrites an
	// earlier one.
	opts := args[2:]
	for i := 0; i < len(opts); i += 2 {
		token, ok := opts[i].Text()
		if !ok {
			return nil, ErrInvalidOption
		}
		token = strings.ToUpper(token)
		if token != "EX" && token != "PX" {
			return nil, ErrInvalidOption
		}
		if i+1 >= len(opts) {
			return nil, ErrInvalidOption
		}
		raw, ok := opts[i+1].Text()
		if !ok {
			return nil, ErrInvalidOption
		}
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, ErrInvalidOption.withMessage("value is not an integer or out of range")
		}
		if token == "EX" {
			if n > math.MaxUint64/1000 {
				return nil, ErrInvalidOption.withMessage("invalid expire time in 'set' command")
			}
			n *= 1000
		}
		ms := n
		cmd.ExpiryMS = &ms
	}

	return cmd, nil
}
