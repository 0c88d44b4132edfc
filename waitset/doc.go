// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package waitset implements an event multiplexer for processes that must
// block on many independent event sources with a single call: pollable
// listeners, deadline monitors, and periodic intervals.
//
// A WaitSet owns a fixed-capacity table of attachments. Attaching a source
// or timer yields a Guard; releasing the Guard detaches it immediately. The
// run loops (WaitAndProcess, WaitAndProcessOnce) block on the union of all
// attachments plus Stop and signal wakeups, and invoke a handler once per
// ready attachment per wakeup batch with a fresh AttachmentId the handler
// correlates against its Guards.
//
// Drain contract: the run loop reports a source ready once per batch. The
// handler must loop the source's TryTakeOne until it reports empty before
// returning. The wait is level-triggered, so an undrained source re-wakes
// the loop immediately, which degrades into a busy loop. The WaitSet cannot
// detect this; it is an obligation on the handler.
package waitset
