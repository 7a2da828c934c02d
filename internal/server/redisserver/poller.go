package redisserver

import "errors"

// Interest is a set of readiness conditions a descriptor is watched for.
type Interest uint8

const (
	// Readable fires when a read will not block, including on hangup or error.
	Readable Interest = 1 << iota
	// Writable fires when a write will not block.
	Writable
)

func (i Interest) String() string {
	switch i {
	case Readable:
		return "read"
	case Writable:
		return "write"
	case Readable | Writable:
		return "read|write"
	default:
		return "none"
	}
}

// Event reports readiness for one descriptor.
type Event struct {
	FD    int
	Ready Interest
}

// Poller is the readiness multiplexer the reactor waits on.
type Poller interface {
	// Add starts watching fd.
	Add(fd int, interest Interest) error
	// Modify replaces the interest set of a watched fd.
	Modify(fd int, interest Interest) error
	// Remove stops watching fd.
	Remove(fd int) error
	// Wait blocks until at least one descriptor is ready or timeoutMS
	// elapses; a negative timeout waits forever. An interrupted wait returns
	// no events and no error. The slice is reused by the next call.
	Wait(timeoutMS int) ([]Event, error)
	Close() error
}

// errWouldBlock is returned by non-blocking sockets when the operation
// cannot make progress yet.
var errWouldBlock = errors.New("redisserver: operation would block")
