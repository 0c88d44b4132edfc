// File: internal/demux/demux.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral demultiplexer surface shared by the Linux and stub builds.

package demux

// Ready describes one descriptor reported ready by Wait.
type Ready struct {
	Token uint64 // token supplied at Add time
	Fd    int    // descriptor that became ready
}

// BlockIndefinitely is the Wait timeout meaning "no timeout".
const BlockIndefinitely = -1
