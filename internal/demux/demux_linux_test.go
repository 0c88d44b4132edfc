//go:build linux
// +build linux

// File: internal/demux/demux_linux_test.go
// Author: momentics <momentics@gmail.com>

package demux

import (
	"testing"
	"time"

	"github.com/momentics/hioload-waitset/internal/wakeup"
)

func TestWaitReturnsToken(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer d.Close()

	w, err := wakeup.New(false)
	if err != nil {
		t.Fatalf("waker failed: %v", err)
	}
	defer w.Close()

	const token = uint64(0xBEEF)
	if err := d.Add(w.Fd(), token); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := w.Wake(); err != nil {
		t.Fatalf("Wake failed: %v", err)
	}
	ready, err := d.Wait(1000)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if len(ready) != 1 {
		t.Fatalf("ready = %d entries, want 1", len(ready))
	}
	if ready[0].Token != token {
		t.Errorf("token = %#x, want %#x", ready[0].Token, token)
	}
	if ready[0].Fd != w.Fd() {
		t.Errorf("fd = %d, want %d", ready[0].Fd, w.Fd())
	}
}

func TestWaitTimeout(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer d.Close()

	w, err := wakeup.New(false)
	if err != nil {
		t.Fatalf("waker failed: %v", err)
	}
	defer w.Close()
	if err := d.Add(w.Fd(), 1); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	started := time.Now()
	ready, err := d.Wait(50)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if len(ready) != 0 {
		t.Errorf("idle wait returned %d entries", len(ready))
	}
	if time.Since(started) < 40*time.Millisecond {
		t.Error("timed wait returned early")
	}
}

func TestDeleteStopsReporting(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer d.Close()

	w, err := wakeup.New(false)
	if err != nil {
		t.Fatalf("waker failed: %v", err)
	}
	defer w.Close()

	if err := d.Add(w.Fd(), 7); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := d.Delete(w.Fd()); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_ = w.Wake()
	ready, err := d.Wait(50)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if len(ready) != 0 {
		t.Errorf("deleted fd still reported: %d entries", len(ready))
	}
}

// TestLevelTriggered checks an unconsumed descriptor stays ready across
// consecutive waits, the behavior the run-loop drain contract relies on.
func TestLevelTriggered(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer d.Close()

	w, err := wakeup.New(false)
	if err != nil {
		t.Fatalf("waker failed: %v", err)
	}
	defer w.Close()
	if err := d.Add(w.Fd(), 1); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	_ = w.Wake()
	for i := 0; i < 2; i++ {
		ready, err := d.Wait(1000)
		if err != nil {
			t.Fatalf("Wait %d failed: %v", i, err)
		}
		if len(ready) != 1 {
			t.Fatalf("wait %d: %d entries, want 1 (undrained fd must stay ready)", i, len(ready))
		}
	}
	_ = w.Drain()
	ready, err := d.Wait(50)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if len(ready) != 0 {
		t.Error("drained fd still reported ready")
	}
}
