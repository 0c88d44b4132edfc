// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package demux provides the OS-level event demultiplexer the WaitSet blocks
// on: epoll on Linux, a stub that reports ErrNotSupported elsewhere.
// Registered descriptors carry an opaque 64-bit token that Wait hands back
// for every ready descriptor.
package demux
