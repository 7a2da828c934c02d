package redisserver

import (
	"bytes"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/respkv/internal/core/command"
	"github.com/yndnr/respkv/pkg/resp"
)

var (
	rateLimitedReply = resp.Serialize(resp.Error("ERR rate limit exceeded"))
	oversizedReply   = resp.Serialize(command.ParseFailureReply)
)

// reactor multiplexes every client connection on one goroutine. All
// descriptor and buffer state is owned by that goroutine; request execution
// is handed to the dispatcher and comes back through completions.
type reactor struct {
	cfg        *Config
	poller     Poller
	listener   listener
	waker      waker
	handler    Handler
	dispatcher Dispatcher
	metrics    Metrics
	logger     *slog.Logger

	conns       map[int]*conn
	completions *completionQueue
	// batchClosed holds descriptors closed while the current batch of
	// events is handled. It is nil outside handleBatch.
	batchClosed map[int]struct{}
	scratch     []byte

	stopping atomic.Bool
	done     chan struct{}
}

func newReactor(cfg *Config, p Poller, ln listener, w waker, h Handler, d Dispatcher, m Metrics, logger *slog.Logger) *reactor {
	return &reactor{
		cfg:         cfg,
		poller:      p,
		listener:    ln,
		waker:       w,
		handler:     h,
		dispatcher:  d,
		metrics:     m,
		logger:      logger,
		conns:       make(map[int]*conn),
		completions: newCompletionQueue(),
		scratch:     make([]byte, cfg.ReadChunkSize),
		done:        make(chan struct{}),
	}
}

// register adds the listener and waker to the poller.
func (r *reactor) register() error {
	if err := r.poller.Add(r.listener.FD(), Readable); err != nil {
		return err
	}
	return r.poller.Add(r.waker.FD(), Readable)
}

// run is the event loop. It returns after stop, once every connection is
// closed.
func (r *reactor) run() {
	defer r.teardown()

	for !r.stopping.Load() {
		events, err := r.poller.Wait(-1)
		if err != nil {
			r.logger.Error("readiness wait failed", "error", err)
			return
		}
		r.handleBatch(events)
		r.applyCompletions()
	}
}

// handleBatch handles one poller batch. Events for a descriptor closed
// earlier in the batch are dropped, since the number may already belong to
// a connection accepted in the same batch.
func (r *reactor) handleBatch(events []Event) {
	r.batchClosed = make(map[int]struct{})
	defer func() { r.batchClosed = nil }()

	for _, ev := range events {
		if _, closed := r.batchClosed[ev.FD]; closed {
			r.logger.Debug("dropping stale event", "fd", ev.FD)
			continue
		}
		r.handleEvent(ev)
	}
}

// stop asks the loop to exit. It may be called from any goroutine.
func (r *reactor) stop() {
	if r.stopping.CompareAndSwap(false, true) {
		r.waker.Wake()
	}
}

func (r *reactor) teardown() {
	for fd := range r.conns {
		r.closeConn(fd)
	}
	if err := r.listener.Close(); err != nil {
		r.logger.Warn("listener close failed", "error", err)
	}
	if err := r.poller.Close(); err != nil {
		r.logger.Warn("poller close failed", "error", err)
	}
	if err := r.waker.Close(); err != nil {
		r.logger.Warn("waker close failed", "error", err)
	}
	close(r.done)
}

func (r *reactor) handleEvent(ev Event) {
	switch ev.FD {
	case r.listener.FD():
		r.acceptAll()
		return
	case r.waker.FD():
		r.waker.Drain()
		return
	}

	if _, ok := r.conns[ev.FD]; !ok {
		r.logger.Warn("unknown descriptor", "fd", ev.FD)
		return
	}
	if ev.Ready&Readable != 0 {
		r.handleReadable(ev.FD)
	}
	if ev.Ready&Writable != 0 {
		if _, ok := r.conns[ev.FD]; ok {
			r.handleWritable(ev.FD)
		}
	}
}

// ============================================================
// Accept
// ============================================================

func (r *reactor) acceptAll() {
	for {
		sock, remote, err := r.listener.Accept()
		if errors.Is(err, errWouldBlock) {
			return
		}
		if err != nil {
			r.metrics.RequestFailed("accept")
			r.logger.Error("accept failed", "error", err)
			return
		}

		c := &conn{
			id:       ulid.Make(),
			sock:     sock,
			remote:   remote,
			interest: Readable,
		}
		if r.cfg.RateLimit > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(r.cfg.RateLimit), r.cfg.RateLimit)
		}

		if err := r.poller.Add(c.fd(), Readable); err != nil {
			r.logger.Error("register connection failed", "remote", remote, "error", err)
			_ = sock.Close()
			continue
		}
		r.conns[c.fd()] = c
		r.metrics.ConnectionOpened()
		r.logger.Debug("connection accepted", "fd", c.fd(), "conn_id", c.id.String(), "remote", remote)
	}
}

// ============================================================
// Read
// ============================================================

func (r *reactor) handleReadable(fd int) {
	c, ok := r.conns[fd]
	if !ok {
		r.logger.Warn("unknown descriptor", "fd", fd)
		return
	}

	for {
		n, err := c.sock.Read(r.scratch)
		if errors.Is(err, errWouldBlock) {
			break
		}
		if err != nil {
			r.metrics.RequestFailed("io")
			r.logger.Warn("connection read failed", "fd", fd, "remote", c.remote, "error", err)
			r.closeConn(fd)
			return
		}
		if n == 0 {
			r.logger.Debug("peer closed connection", "fd", fd, "remote", c.remote)
			r.closeConn(fd)
			return
		}
		c.readBuf = append(c.readBuf, r.scratch[:n]...)
		if limit := r.cfg.MaxRequestBytes; limit > 0 && len(c.readBuf) > limit {
			r.discardOversized(c)
		}
		if n < len(r.scratch) {
			break
		}
	}

	if !c.inFlight && len(c.writeBuf) > 0 && !r.flush(c) {
		return
	}
	r.dispatch(c)
}

// discardOversized drops a read buffer that grew past MaxRequestBytes. Bytes
// held by a job in flight are kept for it; the rest is dropped when it
// completes.
func (r *reactor) discardOversized(c *conn) {
	r.metrics.RequestFailed("oversized")
	r.logger.Warn("request exceeds size limit",
		"fd", c.fd(), "remote", c.remote, "limit", r.cfg.MaxRequestBytes)

	if c.inFlight {
		c.readBuf = c.readBuf[:c.snapLen]
		c.discard = true
		return
	}
	c.readBuf = c.readBuf[:0]
	c.writeBuf = append(c.writeBuf, oversizedReply...)
}

// dispatch hands a snapshot of the read buffer to the dispatcher. A
// connection has at most one job in flight so replies keep request order.
func (r *reactor) dispatch(c *conn) {
	if c.inFlight || len(c.readBuf) == 0 {
		return
	}

	if c.limiter != nil && !c.limiter.Allow() {
		r.metrics.RequestFailed("rate_limit")
		r.logger.Debug("rate limit exceeded", "fd", c.fd(), "remote", c.remote)
		c.readBuf = c.readBuf[:0]
		c.writeBuf = append(c.writeBuf, rateLimitedReply...)
		r.flush(c)
		return
	}

	snapshot := bytes.Clone(c.readBuf)
	c.inFlight = true
	c.snapLen = len(snapshot)

	fd, id := c.fd(), c.id
	job := func() {
		reply, consumed := r.execute(snapshot)
		r.completions.push(completion{fd: fd, connID: id, reply: reply, consumed: consumed})
		r.waker.Wake()
	}
	if err := r.dispatcher.Execute(job); err != nil {
		c.inFlight = false
		r.logger.Error("dispatch failed", "fd", fd, "error", err)
		r.closeConn(fd)
	}
}

// execute runs on a worker.
func (r *reactor) execute(raw []byte) (reply []byte, consumed int) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			r.metrics.RequestFailed("panic")
			r.logger.Error("request handler panicked", "panic", p)
			reply, consumed = resp.Serialize(command.InternalErrorReply), len(raw)
		}
		r.metrics.ObserveJob(time.Since(start))
	}()
	return r.handler.Handle(raw)
}

// applyCompletions folds finished jobs back into their connections.
func (r *reactor) applyCompletions() {
	for _, done := range r.completions.drain() {
		c, ok := r.conns[done.fd]
		if !ok || c.id != done.connID {
			r.logger.Debug("dropping reply for closed connection", "fd", done.fd, "conn_id", done.connID.String())
			continue
		}

		grew := len(c.readBuf) > c.snapLen
		c.inFlight = false
		c.consume(done.consumed)
		c.writeBuf = append(c.writeBuf, done.reply...)
		if c.discard {
			c.discard = false
			c.readBuf = c.readBuf[:0]
			c.writeBuf = append(c.writeBuf, oversizedReply...)
			grew = false
		}

		if len(c.writeBuf) > 0 && !r.flush(c) {
			continue
		}
		if grew {
			r.dispatch(c)
		}
	}
}

// ============================================================
// Write
// ============================================================

func (r *reactor) handleWritable(fd int) {
	c, ok := r.conns[fd]
	if !ok {
		r.logger.Warn("unknown descriptor", "fd", fd)
		return
	}
	r.flush(c)
}

// flush writes as much of the write buffer as the socket takes and sets
// the interest to match what is left. It reports false if the connection
// was closed.
func (r *reactor) flush(c *conn) bool {
	written := 0
	for written < len(c.writeBuf) {
		n, err := c.sock.Write(c.writeBuf[written:])
		if errors.Is(err, errWouldBlock) {
			break
		}
		if err != nil {
			r.metrics.RequestFailed("io")
			r.logger.Warn("connection write failed", "fd", c.fd(), "remote", c.remote, "error", err)
			r.closeConn(c.fd())
			return false
		}
		if n == 0 {
			break
		}
		written += n
	}
	c.writeBuf = append(c.writeBuf[:0], c.writeBuf[written:]...)

	want := Readable
	if len(c.writeBuf) > 0 {
		want = Writable
	}
	return r.setInterest(c, want)
}

func (r *reactor) setInterest(c *conn, want Interest) bool {
	if c.interest == want {
		return true
	}
	if err := r.poller.Modify(c.fd(), want); err != nil {
		r.logger.Error("update interest failed", "fd", c.fd(), "interest", want.String(), "error", err)
		r.closeConn(c.fd())
		return false
	}
	c.interest = want
	return true
}

// ============================================================
// Close
// ============================================================

func (r *reactor) closeConn(fd int) {
	c, ok := r.conns[fd]
	if !ok {
		r.logger.Warn("unknown descriptor", "fd", fd)
		return
	}
	if err := r.poller.Remove(fd); err != nil {
		r.logger.Debug("deregister failed", "fd", fd, "error", err)
	}
	if err := c.sock.Close(); err != nil {
		r.logger.Debug("socket close failed", "fd", fd, "error", err)
	}
	delete(r.conns, fd)
	if r.batchClosed != nil {
		r.batchClosed[fd] = struct{}{}
	}
	r.metrics.ConnectionClosed()
	r.logger.Debug("connection closed", "fd", fd, "conn_id", c.id.String(), "remote", c.remote)
}
