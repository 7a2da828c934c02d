package redisserver

import (
	"sync"

	"github.com/edwingeng/deque/v2"
	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"
)

// conn is the reactor-owned state of one client connection.
//
// Only the reactor goroutine touches a conn. A job in flight works on its
// own copy of the read buffer and reports back through a completion.
type conn struct {
	id     ulid.ULID
	sock   socket
	remote string

	readBuf  []byte
	writeBuf []byte
	interest Interest

	// inFlight is set while a job holds a snapshot of readBuf. snapLen is
	// the length of that snapshot.
	inFlight bool
	snapLen  int

	// discard is set when the buffer overflowed while a job was in flight.
	// The completion drops whatever the job did not consume.
	discard bool

	limiter *rate.Limiter
}

func (c *conn) fd() int { return c.sock.FD() }

// consume drops the first n bytes of the read buffer.
func (c *conn) consume(n int) {
	if n >= len(c.readBuf) {
		c.readBuf = c.readBuf[:0]
		return
	}
	c.readBuf = append(c.readBuf[:0], c.readBuf[n:]...)
}

// completion carries a job result back to the reactor. connID guards
// against a descriptor number reused by a newer connection.
type completion struct {
	fd       int
	connID   ulid.ULID
	reply    []byte
	consumed int
}

// completionQueue is the hand-off from workers to the reactor.
type completionQueue struct {
	mu sync.Mutex
	q  *deque.Deque[completion]
}

func newCompletionQueue() *completionQueue {
	return &completionQueue{q: deque.NewDeque[completion]()}
}

func (cq *completionQueue) push(c completion) {
	cq.mu.Lock()
	cq.q.PushBack(c)
	cq.mu.Unlock()
}

// drain removes and returns every queued completion in arrival order.
func (cq *completionQueue) drain() []completion {
	cq.mu.Lock()
	defer cq.mu.Unlock()
	n := cq.q.Len()
	if n == 0 {
		return nil
	}
	out := make([]completion, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, cq.q.PopFront())
	}
	return out
}
