//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package redisserver

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// kqueuePoller keeps the interest set per descriptor because kqueue filters
// are added and deleted one at a time.
type kqueuePoller struct {
	kq        int
	interests map[int]Interest
	events    []unix.Kevent_t
	ready     []Event
	index     map[int]int
}

func newPoller(maxEvents int) (Poller, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, fmt.Errorf("kqueue: %w", err)
	}
	unix.CloseOnExec(kq)
	return &kqueuePoller{
		kq:        kq,
		interests: make(map[int]Interest),
		events:    make([]unix.Kevent_t, maxEvents),
		ready:     make([]Event, 0, maxEvents),
		index:     make(map[int]int),
	}, nil
}

func (p *kqueuePoller) apply(fd int, from, to Interest) error {
	var changes []unix.Kevent_t
	change := func(filter, flags int) {
		var ev unix.Kevent_t
		unix.SetKevent(&ev, fd, filter, flags)
		changes = append(changes, ev)
	}

	if to&Readable != 0 && from&Readable == 0 {
		change(unix.EVFILT_READ, unix.EV_ADD|unix.EV_ENABLE)
	}
	if to&Readable == 0 && from&Readable != 0 {
		change(unix.EVFILT_READ, unix.EV_DELETE)
	}
	if to&Writable != 0 && from&Writable == 0 {
		change(unix.EVFILT_WRITE, unix.EV_ADD|unix.EV_ENABLE)
	}
	if to&Writable == 0 && from&Writable != 0 {
		change(unix.EVFILT_WRITE, unix.EV_DELETE)
	}
	if len(changes) == 0 {
		return nil
	}

	if _, err := unix.Kevent(p.kq, changes, nil, nil); err != nil {
		return fmt.Errorf("kevent fd %d: %w", fd, err)
	}
	return nil
}

func (p *kqueuePoller) Add(fd int, interest Interest) error {
	if err := p.apply(fd, 0, interest); err != nil {
		return err
	}
	p.interests[fd] = interest
	return nil
}

func (p *kqueuePoller) Modify(fd int, interest Interest) error {
	from, ok := p.interests[fd]
	if !ok {
		return fmt.Errorf("kevent fd %d: %w", fd, unix.ENOENT)
	}
	if err := p.apply(fd, from, interest); err != nil {
		return err
	}
	p.interests[fd] = interest
	return nil
}

func (p *kqueuePoller) Remove(fd int) error {
	from, ok := p.interests[fd]
	if !ok {
		return fmt.Errorf("kevent fd %d: %w", fd, unix.ENOENT)
	}
	delete(p.interests, fd)
	return p.apply(fd, from, 0)
}

func (p *kqueuePoller) Wait(timeoutMS int) ([]Event, error) {
	var ts *unix.Timespec
	if timeoutMS >= 0 {
		t := unix.NsecToTimespec(int64(time.Duration(timeoutMS) * time.Millisecond))
		ts = &t
	}

	n, err := unix.Kevent(p.kq, nil, p.events, ts)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return nil, nil
		}
		return nil, fmt.Errorf("kevent wait: %w", err)
	}

	// Read and write filters arrive as separate kevents; fold them into one
	// Event per descriptor.
	p.ready = p.ready[:0]
	clear(p.index)
	for _, ev := range p.events[:n] {
		fd := int(ev.Ident)
		var ready Interest
		switch ev.Filter {
		case unix.EVFILT_READ:
			ready = Readable
		case unix.EVFILT_WRITE:
			ready = Writable
		}
		if ev.Flags&(unix.EV_EOF|unix.EV_ERROR) != 0 {
			ready |= Readable
		}
		if i, ok := p.index[fd]; ok {
			p.ready[i].Ready |= ready
			continue
		}
		p.index[fd] = len(p.ready)
		p.ready = append(p.ready, Event{FD: fd, Ready: ready})
	}
	return p.ready, nil
}

func (p *kqueuePoller) Close() error {
	return unix.Close(p.kq)
}
