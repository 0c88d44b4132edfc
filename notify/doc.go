// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package notify provides the bundled in-process EventSource: an
// eventfd-backed Listener/Notifier pair. The notifier side enqueues a
// payload and bumps the eventfd; the listener side is pollable by a WaitSet
// and takes pending events one at a time, which is exactly the drain shape
// the run loop's handler contract expects.
package notify
