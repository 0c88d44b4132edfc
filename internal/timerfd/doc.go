// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package timerfd wraps Linux timer file descriptors. Deadline attachments
// use one-shot timers, interval attachments use periodic ones; both become
// plain pollable descriptors the demultiplexer can wait on alongside event
// sources.
package timerfd
