// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package wakeup provides an eventfd-backed waker: a pollable counter used
// to interrupt a blocked demultiplexer wait (Stop, signal forwarding) and as
// the wait primitive of the bundled notify transport binding.
package wakeup
