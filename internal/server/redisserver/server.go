package redisserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"runtime"
	"sync"
	"time"

	"github.com/yndnr/respkv/internal/infra/workerpool"
)

// Config holds the RESP server configuration.
type Config struct {
	// Address is the TCP listen address.
	Address string
	// ReadChunkSize is the size of each read from a ready socket.
	ReadChunkSize int
	// MaxEvents caps the events returned by one readiness wait.
	MaxEvents int
	// Workers is the number of goroutines executing requests.
	Workers int
	// RateLimit is the number of dispatches per second allowed per
	// connection. Set to 0 to disable rate limiting.
	RateLimit int
	// MaxRequestBytes caps the unparsed bytes buffered for one connection.
	// A connection over the cap gets the parse-failure reply and its
	// buffer is discarded. 0 disables the cap.
	MaxRequestBytes int
}

// DefaultMaxRequestBytes matches the Redis limit on one bulk string.
const DefaultMaxRequestBytes = 512 << 20

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:         "127.0.0.1:6379",
		ReadChunkSize:   1024,
		MaxEvents:       128,
		Workers:         runtime.NumCPU(),
		RateLimit:       0,
		MaxRequestBytes: DefaultMaxRequestBytes,
	}
}

// Handler turns buffered request bytes into reply bytes. consumed is the
// number of leading bytes of raw that were fully handled.
type Handler interface {
	Handle(raw []byte) (reply []byte, consumed int)
}

// Dispatcher runs a job, usually on another goroutine.
type Dispatcher interface {
	Execute(job func()) error
}

// Metrics receives connection and request events.
type Metrics interface {
	ConnectionOpened()
	ConnectionClosed()
	RequestFailed(kind string)
	ObserveJob(d time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) ConnectionOpened()        {}
func (nopMetrics) ConnectionClosed()        {}
func (nopMetrics) RequestFailed(string)     {}
func (nopMetrics) ObserveJob(time.Duration) {}

// ErrAlreadyStarted is returned by a second call to Start.
var ErrAlreadyStarted = errors.New("redisserver: already started")

// Server serves RESP over TCP from a single reactor goroutine.
type Server struct {
	cfg        *Config
	handler    Handler
	logger     *slog.Logger
	metrics    Metrics
	dispatcher Dispatcher
	pool       *workerpool.Pool

	mu      sync.Mutex
	reactor *reactor
	addr    net.Addr
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithDispatcher replaces the worker pool the server would otherwise
// create. The caller keeps ownership of d.
func WithDispatcher(d Dispatcher) Option {
	return func(s *Server) {
		s.dispatcher = d
	}
}

// New creates a RESP server.
func New(cfg *Config, handler Handler, opts ...Option) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Server{
		cfg:     cfg,
		handler: handler,
		logger:  slog.Default(),
		metrics: nopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start binds the listener and runs the event loop in the background. The
// loop stops when ctx is done or Shutdown is called; either way a pool owned
// by the server is closed once the loop has exited.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reactor != nil {
		return ErrAlreadyStarted
	}

	if s.dispatcher == nil {
		pool, err := workerpool.New(s.cfg.Workers, workerpool.WithLogger(s.logger))
		if err != nil {
			return fmt.Errorf("create worker pool: %w", err)
		}
		s.pool = pool
		s.dispatcher = pool
	}

	r, err := s.buildReactor()
	if err != nil {
		s.closePool()
		return err
	}
	s.reactor = r
	s.addr = r.listener.Addr()

	s.logger.Info("starting redis server",
		"address", s.addr.String(),
		"workers", s.cfg.Workers,
		"read_chunk_size", s.cfg.ReadChunkSize)

	go r.run()
	go func() {
		select {
		case <-ctx.Done():
			r.stop()
		case <-r.done:
		}
		<-r.done
		s.closePool()
	}()

	return nil
}

func (s *Server) buildReactor() (*reactor, error) {
	ln, err := listenTCP(s.cfg.Address)
	if err != nil {
		return nil, err
	}
	p, err := newPoller(s.cfg.MaxEvents)
	if err != nil {
		_ = ln.Close()
		return nil, err
	}
	w, err := newWaker()
	if err != nil {
		_ = p.Close()
		_ = ln.Close()
		return nil, err
	}

	r := newReactor(s.cfg, p, ln, w, s.handler, s.dispatcher, s.metrics, s.logger)
	if err := r.register(); err != nil {
		_ = w.Close()
		_ = p.Close()
		_ = ln.Close()
		return nil, fmt.Errorf("register listener: %w", err)
	}
	return r, nil
}

// Addr returns the bound listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Done is closed once the event loop has exited.
func (s *Server) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reactor == nil {
		return nil
	}
	return s.reactor.done
}

// Shutdown stops the event loop, closes every connection, and drains the
// worker pool.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	r := s.reactor
	s.mu.Unlock()

	if r == nil {
		return nil
	}

	r.stop()
	select {
	case <-r.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.closePool()
	s.logger.Info("redis server stopped")
	return nil
}

func (s *Server) closePool() {
	if s.pool != nil {
		s.pool.Close()
	}
}
