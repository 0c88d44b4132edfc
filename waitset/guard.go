// File: waitset/guard.go
// Author: momentics <momentics@gmail.com>
//
// Guard and AttachmentId capability tokens. Both carry the owning slot's
// generation counter so use-after-release is detected instead of silently
// touching a recycled slot.

package waitset

import "sync/atomic"

// Guard owns one attachment's registration. Releasing it detaches the
// attachment immediately; the zero of everything else about the attachment
// is torn down with it. Guards are single-owner tokens and must not outlive
// their WaitSet.
type Guard struct {
	ws       *WaitSet
	idx      int
	gen      uint32
	released atomic.Bool
}

// Release detaches the attachment from its WaitSet. Idempotent. Calling
// Release after the WaitSet was closed is a contract violation and panics.
func (g *Guard) Release() {
	if !g.released.CompareAndSwap(false, true) {
		return
	}
	g.ws.mu.Lock()
	defer g.ws.mu.Unlock()
	if g.ws.closed {
		panic("waitset: guard released after its waitset was closed")
	}
	s := &g.ws.slots[g.idx]
	if !s.active || s.gen != g.gen {
		// Already force-detached; nothing to do.
		return
	}
	g.ws.detachLocked(g.idx)
}

// AttachmentId correlates one run-loop dispatch with the Guards held by the
// caller. It is valid only for the duration of the handler invocation that
// received it (unless transferred to a WaitSetEvent by the pull adapter);
// using it afterwards panics.
type AttachmentId struct {
	ws       *WaitSet
	idx      int
	gen      uint32
	missed   bool
	valid    bool
	captured bool
}

// OriginatesFrom reports whether this dispatch was produced by g's
// attachment.
func (id *AttachmentId) OriginatesFrom(g *Guard) bool {
	id.ensureValid()
	return id.ws == g.ws && id.idx == g.idx && id.gen == g.gen
}

// MissedDeadline reports whether this dispatch is the timeout path of g's
// deadline attachment. Always false for other attachment kinds and for
// dispatches not originating from g.
func (id *AttachmentId) MissedDeadline(g *Guard) bool {
	id.ensureValid()
	return id.missed && id.ws == g.ws && id.idx == g.idx && id.gen == g.gen
}

func (id *AttachmentId) ensureValid() {
	if !id.valid {
		panic("waitset: attachment id used outside its dispatch cycle")
	}
}

// capture transfers validity beyond the handler return; used by the pull
// adapter, which invalidates the id when its WaitSetEvent is closed.
func (id *AttachmentId) capture() {
	id.captured = true
}

func (id *AttachmentId) invalidate() {
	id.valid = false
}
