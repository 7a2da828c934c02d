package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yndnr/respkv/pkg/resp"
)

// Error is a command validation failure. Errors compare equal under
// errors.Is when their codes match.
type Error struct {
	Code    string // Stable class, e.g. "WRONG_ARITY"
	Message string // Reply text without the "ERR " prefix
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Is implements errors.Is() support for error comparison.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Reply renders the error as the value sent to the client.
func (e *Error) Reply() resp.Value {
	return resp.Error("ERR " + e.Message)
}

func (e *Error) withMessage(format string, args ...any) *Error {
	return &Error{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

var (
	// ErrNotACommand means the request is not a non-empty array whose
	// first element is a string.
	ErrNotACommand = &Error{Code: "NOT_A_COMMAND", Message: "invalid request, expected an array of bulk strings"}

	// ErrWrongArity means the argument count does not fit the command.
	ErrWrongArity = &Error{Code: "WRONG_ARITY", Message: "wrong number of arguments"}

	// ErrWrongType means an argument is not a string.
	ErrWrongType = &Error{Code: "WRONG_TYPE", Message: "invalid argument type"}

	// ErrInvalidOption means a SET option token or its value is invalid.
	ErrInvalidOption = &Error{Code: "INVALID_OPTION", Message: "syntax error"}

	// ErrUnknownCommand means the command name is not recognized.
	ErrUnknownCommand = &Error{Code: "UNKNOWN_COMMAND", Message: "unknown command"}
)

// ParseFailureReply is sent for any request bytes the codec rejects.
var ParseFailureReply = resp.Error("ERR failed to parse request")

// InternalErrorReply is sent when executing a request panics.
var InternalErrorReply = resp.Error("ERR internal error")

// ReplyFor renders err as a client reply.
func ReplyFor(err error) resp.Value {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Reply()
	}
	return ParseFailureReply
}

func wrongArity(name string) *Error {
	return ErrWrongArity.withMessage("wrong number of arguments for '%s' command", name)
}

func wrongType(name string) *Error {
	return ErrWrongType.withMessage("invalid argument type for '%s' command", name)
}

// unknownCommand quotes a client-supplied name, so CR and LF become spaces.
func unknownCommand(name string) *Error {
	name = strings.NewReplacer("\r", " ", "\n", " ").Replace(name)
	return ErrUnknownCommand.withMessage("unknown command '%s'", name)
}
