// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package control provides runtime observability helpers. A WaitSet can be
// wired to a Registry at build time; it then publishes wakeup and dispatch
// counters external tools can snapshot.
package control
