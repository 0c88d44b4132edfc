//go:build !linux
// +build !linux

// File: internal/demux/demux_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package demux

import "github.com/momentics/hioload-waitset/api"

// Demux is unavailable on this platform.
type Demux struct{}

// New returns an error for unsupported platforms.
func New() (*Demux, error) {
	return nil, api.ErrNotSupported
}

func (d *Demux) Add(fd int, token uint64) error { return api.ErrNotSupported }

func (d *Demux) Delete(fd int) error { return api.ErrNotSupported }

func (d *Demux) Wait(timeoutMs int) ([]Ready, error) { return nil, api.ErrNotSupported }

func (d *Demux) Close() error { return nil }
