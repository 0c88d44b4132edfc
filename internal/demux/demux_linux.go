//go:build linux
// +build linux

// File: internal/demux/demux_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll implementation of the demultiplexer. Level-triggered on
// purpose: an event source that is not fully drained stays ready, which is
// exactly the re-wake behavior the run-loop drain contract documents.

package demux

import (
	"sync"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-waitset/api"
)

const maxEventsPerWait = 128

// Demux wraps an epoll instance. Add/Delete may be called concurrently with
// a blocked Wait on another goroutine; the kernel serializes epoll_ctl
// against epoll_wait, the token table is guarded here.
type Demux struct {
	epfd int

	mu     sync.Mutex
	tokens map[int]uint64 // fd -> token
}

// New creates an epoll-backed demultiplexer.
func New() (*Demux, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, api.WrapError(api.ErrCodeInsufficientResources, "epoll create", err)
	}
	return &Demux{
		epfd:   epfd,
		tokens: make(map[int]uint64),
	}, nil
}

// Add registers fd for read readiness under the given token.
func (d *Demux) Add(fd int, token uint64) error {
	ev := unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(fd),
	}
	if err := unix.EpollCtl(d.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		if err == unix.ENOSPC || err == unix.ENOMEM {
			return api.WrapError(api.ErrCodeInsufficientResources, "epoll ctl add", err)
		}
		return api.WrapError(api.ErrCodeInternal, "epoll ctl add", err)
	}
	d.mu.Lock()
	d.tokens[fd] = token
	d.mu.Unlock()
	return nil
}

// Delete removes fd from the interest set.
func (d *Demux) Delete(fd int) error {
	if err := unix.EpollCtl(d.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return api.WrapError(api.ErrCodeInternal, "epoll ctl del", err)
	}
	d.mu.Lock()
	delete(d.tokens, fd)
	d.mu.Unlock()
	return nil
}

// Wait blocks until at least one registered descriptor is ready or the
// timeout elapses. timeoutMs < 0 blocks indefinitely. A signal interrupting
// the wait (EINTR) is reported as an empty batch, not an error; callers that
// need a hard timeout must recompute the remaining time themselves.
func (d *Demux) Wait(timeoutMs int) ([]Ready, error) {
	var events [maxEventsPerWait]unix.EpollEvent
	n, err := unix.EpollWait(d.epfd, events[:], timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		if err == unix.EACCES || err == unix.EPERM {
			return nil, api.WrapError(api.ErrCodeInsufficientPermissions, "epoll wait", err)
		}
		return nil, api.WrapError(api.ErrCodeInternal, "epoll wait", err)
	}

	batch := make([]Ready, 0, n)
	d.mu.Lock()
	for i := 0; i < n; i++ {
		fd := int(events[i].Fd)
		token, ok := d.tokens[fd]
		if !ok {
			// Deleted between wakeup and token lookup; drop it.
			continue
		}
		batch = append(batch, Ready{Token: token, Fd: fd})
	}
	d.mu.Unlock()
	return batch, nil
}

// Close releases the epoll descriptor.
func (d *Demux) Close() error {
	return unix.Close(d.epfd)
}
