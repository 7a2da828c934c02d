//go:build unix

package redisserver

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"golang.org/x/sys/unix"
)

// socket is a connected, non-blocking stream descriptor.
type socket interface {
	FD() int
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// listener accepts connections without blocking.
type listener interface {
	FD() int
	// Accept returns errWouldBlock when no connection is pending.
	Accept() (socket, string, error)
	Addr() net.Addr
	Close() error
}

// waker interrupts a poller Wait from another goroutine.
type waker interface {
	FD() int
	Wake()
	Drain()
	Close() error
}

func mapErr(err error) error {
	if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
		return errWouldBlock
	}
	return err
}

// ============================================================
// Connected socket
// ============================================================

type fdSocket struct {
	fd int
}

func (s *fdSocket) FD() int { return s.fd }

func (s *fdSocket) Read(p []byte) (int, error) {
	for {
		n, err := unix.Read(s.fd, p)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return 0, mapErr(err)
		}
		return n, nil
	}
}

func (s *fdSocket) Write(p []byte) (int, error) {
	for {
		n, err := unix.Write(s.fd, p)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return 0, mapErr(err)
		}
		return n, nil
	}
}

func (s *fdSocket) Close() error {
	return unix.Close(s.fd)
}

// ============================================================
// Listener
// ============================================================

type tcpListener struct {
	fd   int
	addr net.Addr
}

// listenTCP binds a non-blocking TCP listener on address.
func listenTCP(address string) (*tcpListener, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", address, err)
	}

	family := unix.AF_INET
	var sa unix.Sockaddr
	if ip4 := tcpAddr.IP.To4(); ip4 != nil || tcpAddr.IP == nil {
		in4 := &unix.SockaddrInet4{Port: tcpAddr.Port}
		copy(in4.Addr[:], ip4)
		sa = in4
	} else {
		family = unix.AF_INET6
		in6 := &unix.SockaddrInet6{Port: tcpAddr.Port}
		copy(in6.Addr[:], tcpAddr.IP.To16())
		sa = in6
	}

	fd, err := unix.Socket(family, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("socket: %w", err)
	}
	unix.CloseOnExec(fd)

	fail := func(op string, err error) (*tcpListener, error) {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("%s %s: %w", op, address, err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return fail("setsockopt", err)
	}
	if err := unix.Bind(fd, sa); err != nil {
		return fail("bind", err)
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		return fail("listen", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		return fail("set nonblock", err)
	}

	bound, err := unix.Getsockname(fd)
	if err != nil {
		return fail("getsockname", err)
	}
	return &tcpListener{fd: fd, addr: sockaddrToTCP(bound)}, nil
}

func (l *tcpListener) FD() int { return l.fd }

func (l *tcpListener) Addr() net.Addr { return l.addr }

func (l *tcpListener) Accept() (socket, string, error) {
	for {
		nfd, sa, err := unix.Accept(l.fd)
		if errors.Is(err, unix.EINTR) || errors.Is(err, unix.ECONNABORTED) {
			continue
		}
		if err != nil {
			return nil, "", mapErr(err)
		}
		unix.CloseOnExec(nfd)
		if err := unix.SetNonblock(nfd, true); err != nil {
			_ = unix.Close(nfd)
			return nil, "", fmt.Errorf("set nonblock: %w", err)
		}
		remote := ""
		if addr := sockaddrToTCP(sa); addr != nil {
			remote = addr.String()
		}
		return &fdSocket{fd: nfd}, remote, nil
	}
}

func (l *tcpListener) Close() error {
	return unix.Close(l.fd)
}

func sockaddrToTCP(sa unix.Sockaddr) *net.TCPAddr {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{IP: net.IP(a.Addr[:]).To16(), Port: a.Port}
	case *unix.SockaddrInet6:
		return &net.TCPAddr{IP: net.IP(a.Addr[:]), Port: a.Port}
	default:
		return nil
	}
}

// ============================================================
// Waker
// ============================================================

// pipeWaker wakes the poller by writing to a self-pipe.
type pipeWaker struct {
	mu     sync.Mutex
	closed bool
	r, w   int
}

func newWaker() (*pipeWaker, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return nil, fmt.Errorf("pipe: %w", err)
	}
	for _, fd := range fds {
		unix.CloseOnExec(fd)
		if err := unix.SetNonblock(fd, true); err != nil {
			_ = unix.Close(fds[0])
			_ = unix.Close(fds[1])
			return nil, fmt.Errorf("set nonblock: %w", err)
		}
	}
	return &pipeWaker{r: fds[0], w: fds[1]}, nil
}

func (w *pipeWaker) FD() int { return w.r }

// Wake is safe to call from any goroutine, also after Close. A full pipe
// already guarantees a pending wakeup.
func (w *pipeWaker) Wake() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	_, _ = unix.Write(w.w, []byte{1})
}

func (w *pipeWaker) Drain() {
	var buf [64]byte
	for {
		n, err := unix.Read(w.r, buf[:])
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil || n < len(buf) {
			return
		}
	}
}

func (w *pipeWaker) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	err := unix.Close(w.w)
	if rerr := unix.Close(w.r); err == nil {
		err = rerr
	}
	return err
}
