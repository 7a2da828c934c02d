package workerpool

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/edwingeng/deque/v2"
)

var (
	// ErrInvalidSize is returned by New for a non-positive worker count.
	ErrInvalidSize = errors.New("workerpool: size must be positive")
	// ErrPoolClosed is returned by Execute after Close.
	ErrPoolClosed = errors.New("workerpool: pool is closed")
)

// Pool is a fixed-size worker pool.
type Pool struct {
	size   int
	logger *slog.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	queue  *deque.Deque[func()]
	closed bool

	wg sync.WaitGroup
}

// Option configures a Pool.
type Option func(*Pool)

// WithLogger sets the logger used to report job panics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New starts size workers.
func New(size int, opts ...Option) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}

	p := &Pool{
		size:   size,
		logger: slog.Default(),
		queue:  deque.NewDeque[func()](),
	}
	p.cond = sync.NewCond(&p.mu)
	for _, opt := range opts {
		opt(p)
	}

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker(i)
	}
	return p, nil
}

// Execute queues job. It never blocks on a busy pool.
func (p *Pool) Execute(job func()) error {
	if job == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.queue.PushBack(job)
	p.cond.Signal()
	return nil
}

// Close stops accepting jobs, waits for queued jobs to run, and joins the
// workers. It is safe to call more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		p.cond.Broadcast()
	}
	p.mu.Unlock()

	p.wg.Wait()
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Pending returns the number of queued jobs not yet picked up.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Len()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		job, ok := p.next()
		if !ok {
			return
		}
		p.run(id, job)
	}
}

// next blocks until a job is queued or the pool is closed and drained.
func (p *Pool) next() (func(), bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for p.queue.Len() == 0 {
		if p.closed {
			return nil, false
		}
		p.cond.Wait()
	}
	return p.queue.PopFront(), true
}

func (p *Pool) run(id int, job func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker job panicked", "worker", id, "panic", r)
		}
	}()
	job()
}
