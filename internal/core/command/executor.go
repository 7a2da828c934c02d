package command

import (
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/yndnr/respkv/pkg/resp"
)

// Store is the key-value storage a command runs against.
type Store interface {
	Get(key string) (resp.Value, bool)
	Set(key string, value resp.Value, ttl *time.Duration)
}

// Recorder receives per-request outcomes, typically for metrics.
type Recorder interface {
	CommandProcessed(name string)
	RequestFailed(kind string)
}

// Failure kinds passed to Recorder.RequestFailed.
const (
	FailureParse   = "parse"
	FailureCommand = "command"
)

type nopRecorder struct{}

func (nopRecorder) CommandProcessed(string) {}
func (nopRecorder) RequestFailed(string)    {}

// Executor runs commands against a Store.
type Executor struct {
	store    Store
	recorder Recorder
	logger   *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithRecorder sets the outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Executor) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExecutor creates an Executor over store.
func NewExecutor(store Store, opts ...Option) *Executor {
	e := &Executor{
		store:    store,
		recorder: nopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs cmd and returns its reply.
func (e *Executor) Execute(cmd Command) resp.Value {
	e.recorder.CommandProcessed(cmd.Name())

	switch c := cmd.(type) {
	case Ping:
		return c.Reply
	case Echo:
		return c.Reply
	case Get:
		v, ok := e.store.Get(string(c.Key.Bulk))
		if !ok {
			return resp.NilBulkString()
		}
		return v
	case Set:
		var ttl *time.Duration
		if c.ExpiryMS != nil {
			d := msToDuration(*c.ExpiryMS)
			ttl = &d
		}
		e.store.Set(string(c.Key.Bulk), c.Value, ttl)
		return resp.SimpleString("OK")
	case Config, Introspect:
		return resp.Array()
	default:
		return unknownCommand(cmd.Name()).Reply()
	}
}

// Dispatch extracts and executes a single parsed request.
func (e *Executor) Dispatch(req resp.Value) resp.Value {
	cmd, err := Extract(req)
	if err != nil {
		e.recorder.RequestFailed(FailureCommand)
		e.logger.Debug("command rejected", "error", err)
		return ReplyFor(err)
	}
	return e.Execute(cmd)
}

// Handle serves every complete request at the start of raw and returns the
// encoded replies plus the number of bytes consumed.
//
// A trailing request that is cut short is left unconsumed so the caller can
// retry once more bytes arrive. Any other parse failure produces a single
// parse-failure reply and consumes all of raw.
func (e *Executor) Handle(raw []byte) (reply []byte, consumed int) {
	for consumed < len(raw) {
		req, n, err := resp.ParsePrefix(raw[consumed:])
		if errors.Is(err, resp.ErrUnexpectedEOF) {
			break
		}
		if err != nil || n == 0 {
			e.recorder.RequestFailed(FailureParse)
			e.logger.Debug("request parse failed", "error", err, "bytes", len(raw)-consumed)
			reply = resp.AppendValue(reply, ParseFailureReply)
			return reply, len(raw)
		}
		consumed += n
		reply = resp.AppendValue(reply, e.Dispatch(req))
	}
	return reply, consumed
}

func msToDuration(ms uint64) time.Duration {
	if ms > uint64(math.MaxInt64/int64(time.Millisecond)) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ms) * time.Millisecond
}
