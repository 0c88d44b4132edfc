//go:build linux
// +build linux

// File: waitset/waitset_test.go
// Author: momentics <momentics@gmail.com>

package waitset

import (
	"errors"
	"testing"
	"time"

	"github.com/momentics/hioload-waitset/api"
	"github.com/momentics/hioload-waitset/control"
	"github.com/momentics/hioload-waitset/notify"
)

func mustWaitSet(t *testing.T, capacity int) *WaitSet {
	t.Helper()
	ws, err := NewBuilder().Capacity(capacity).Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return ws
}

func mustPair(t *testing.T) (*notify.Listener, *notify.Notifier) {
	t.Helper()
	l, n, err := notify.NewPair()
	if err != nil {
		t.Fatalf("NewPair failed: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l, n
}

// TestCapacityInvariant checks that attach fails once the table is full and
// succeeds again after any one guard is released.
func TestCapacityInvariant(t *testing.T) {
	const capacity = 3
	ws := mustWaitSet(t, capacity)

	guards := make([]*Guard, 0, capacity)
	for i := 0; i < capacity; i++ {
		l, _ := mustPair(t)
		g, err := ws.AttachNotification(l)
		if err != nil {
			t.Fatalf("attach %d failed: %v", i, err)
		}
		guards = append(guards, g)
	}

	extra, _ := mustPair(t)
	if _, err := ws.AttachNotification(extra); !errors.Is(err, api.ErrInsufficientCapacity) {
		t.Fatalf("expected ErrInsufficientCapacity, got %v", err)
	}

	guards[1].Release()
	if ws.Len() != capacity-1 {
		t.Fatalf("Len after release = %d, want %d", ws.Len(), capacity-1)
	}

	g, err := ws.AttachNotification(extra)
	if err != nil {
		t.Fatalf("attach after release failed: %v", err)
	}
	g.Release()
	guards[0].Release()
	guards[2].Release()
	if err := ws.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

// TestDuplicateAttach checks that the same source cannot be attached twice
// while its first guard is alive.
func TestDuplicateAttach(t *testing.T) {
	ws := mustWaitSet(t, 4)
	l, _ := mustPair(t)

	g, err := ws.AttachNotification(l)
	if err != nil {
		t.Fatalf("first attach failed: %v", err)
	}
	if _, err := ws.AttachNotification(l); !errors.Is(err, api.ErrAlreadyAttached) {
		t.Fatalf("expected ErrAlreadyAttached, got %v", err)
	}

	// After release the source is attachable again.
	g.Release()
	g2, err := ws.AttachNotification(l)
	if err != nil {
		t.Fatalf("re-attach after release failed: %v", err)
	}
	g2.Release()
	_ = ws.Close()
}

func TestAccessors(t *testing.T) {
	ws, err := NewBuilder().
		Capacity(8).
		SignalHandling(api.SignalHandlingDisabled).
		Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer ws.Close()

	if ws.Capacity() != 8 {
		t.Errorf("Capacity = %d, want 8", ws.Capacity())
	}
	if !ws.IsEmpty() || ws.Len() != 0 {
		t.Errorf("new waitset not empty: len=%d", ws.Len())
	}
	if ws.SignalHandlingMode() != api.SignalHandlingDisabled {
		t.Errorf("SignalHandlingMode = %v", ws.SignalHandlingMode())
	}

	l, _ := mustPair(t)
	g, err := ws.AttachNotification(l)
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if ws.IsEmpty() || ws.Len() != 1 {
		t.Errorf("after attach: len=%d", ws.Len())
	}
	g.Release()
}

func TestBuilderSingleUse(t *testing.T) {
	b := NewBuilder()
	ws, err := b.Create()
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	defer ws.Close()

	if _, err := b.Create(); !errors.Is(err, api.ErrInternal) {
		t.Fatalf("second Create: expected ErrInternal, got %v", err)
	}
}

func TestDefaultCapacity(t *testing.T) {
	ws, err := NewBuilder().Capacity(-1).Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer ws.Close()
	if ws.Capacity() != DefaultCapacity {
		t.Errorf("Capacity = %d, want %d", ws.Capacity(), DefaultCapacity)
	}
}

// TestRunWithNoAttachments checks that waiting on an empty waitset is
// rejected instead of blocking forever.
func TestRunWithNoAttachments(t *testing.T) {
	ws := mustWaitSet(t, 4)
	defer ws.Close()

	_, err := ws.WaitAndProcessOnce(func(*AttachmentId) api.CallbackProgression {
		t.Error("handler must not run")
		return api.Continue
	})
	if !errors.Is(err, api.ErrNoAttachments) {
		t.Fatalf("expected ErrNoAttachments, got %v", err)
	}
}

func TestGuardReleaseIdempotent(t *testing.T) {
	ws := mustWaitSet(t, 4)
	l, _ := mustPair(t)
	g, err := ws.AttachNotification(l)
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	g.Release()
	g.Release() // second release is a no-op
	if ws.Len() != 0 {
		t.Errorf("Len = %d after double release", ws.Len())
	}
	_ = ws.Close()
}

// TestGuardReleaseAfterClose checks that outliving the waitset fails fast.
func TestGuardReleaseAfterClose(t *testing.T) {
	ws := mustWaitSet(t, 4)
	l, _ := mustPair(t)
	g, err := ws.AttachNotification(l)
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	_ = ws.Close()

	defer func() {
		if recover() == nil {
			t.Error("expected panic from Release after Close")
		}
	}()
	g.Release()
}

// TestMetricsRegistry checks that a wired control.Registry receives the
// waitset counters.
func TestMetricsRegistry(t *testing.T) {
	reg := control.NewRegistry()
	ws, err := NewBuilder().Capacity(4).Metrics(reg).Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer ws.Close()

	l, n := mustPair(t)
	g, err := ws.AttachNotification(l)
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	defer g.Release()

	if err := n.Notify([]byte("x")); err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	_, err = ws.WaitAndProcessOnce(func(id *AttachmentId) api.CallbackProgression {
		for {
			if _, ok := l.TryTakeOne(); !ok {
				break
			}
		}
		return api.Continue
	})
	if err != nil {
		t.Fatalf("WaitAndProcessOnce failed: %v", err)
	}

	if reg.Get(MetricDispatches) == 0 {
		t.Error("registry did not record dispatches")
	}
	if reg.Get(MetricWakeups) == 0 {
		t.Error("registry did not record wakeups")
	}
	st := ws.Stats()
	if st.Dispatches == 0 || st.Wakeups == 0 {
		t.Errorf("stats snapshot empty: %+v", st)
	}
	if st.CapturedAt.After(time.Now()) {
		t.Error("stats snapshot timestamp in the future")
	}
}
