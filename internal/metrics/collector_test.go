package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestCollector_PhaseTracking(t *testing.T) {
	c := NewCollector(zerolog.Nop())
	defer c.Close()

	c.SetPhase("connecting")
	snap := c.Snapshot()
	if snap.Phase != "connecting" {
		t.Errorf("Phase = %q, want connecting", snap.Phase)
	}

	c.SetPhase("streaming")
	snap = c.Snapshot()
	if snap.Phase != "streaming" {
		t.Errorf("Phase = %q, want streaming", snap.Phase)
	}
}

func TestCollector_TargetLifecycle(t *testing.T) {
	c := NewCollector(zerolog.Nop())
	defer c.Close()

	c.SetTargets([]string{"a:6379", "b:6379"})

	snap := c.Snapshot()
	if snap.TargetsTotal != 2 {
		t.Errorf("TargetsTotal = %d, want 2", snap.TargetsTotal)
	}
	for _, tp := range snap.Targets {
		if tp.Status != TargetPending {
			t.Errorf("target %s status = %s, want pending", tp.Address, tp.Status)
		}
	}

	c.TargetSyncing("a:6379")
	snap = c.Snapshot()
	found := false
	for _, tp := range snap.Targets {
		if tp.Address == "a:6379" && tp.Status == TargetSyncing {
			found = true
		}
	}
	if !found {
		t.Error("a:6379 should be in syncing state")
	}

	c.TargetStreaming("a:6379")
	snap = c.Snapshot()
	for _, tp := range snap.Targets {
		if tp.Address == "a:6379" && tp.Status != TargetStreaming {
			t.Errorf("a:6379 status = %s, want streaming", tp.Status)
		}
	}
}

func TestCollector_RecordSent(t *testing.T) {
	c := NewCollector(zerolog.Nop())
	defer c.Close()

	c.SetTargets([]string{"a:6379"})
	c.RecordSent("a:6379", 10, 3)

	snap := c.Snapshot()
	if snap.TotalRequests != 10 {
		t.Errorf("TotalRequests = %d, want 10", snap.TotalRequests)
	}
	if snap.Targets[0].RequestsSent != 10 {
		t.Errorf("RequestsSent = %d, want 10", snap.Targets[0].RequestsSent)
	}
	if snap.Targets[0].QueueDepth != 3 {
		t.Errorf("QueueDepth = %d, want 3", snap.Targets[0].QueueDepth)
	}
}

func TestCollector_RecordDropped(t *testing.T) {
	c := NewCollector(zerolog.Nop())
	defer c.Close()

	c.SetTargets([]string{"a:6379"})
	c.RecordDropped("a:6379", 4)

	snap := c.Snapshot()
	if snap.Targets[0].RequestsDropped != 4 {
		t.Errorf("RequestsDropped = %d, want 4", snap.Targets[0].RequestsDropped)
	}
}

func TestCollector_OffsetLag(t *testing.T) {
	c := NewCollector(zerolog.Nop())
	defer c.Close()

	c.RecordOffset("8c2c96a49b0a9b3e1d", 100, 250)

	snap := c.Snapshot()
	if snap.ReplicationID != "8c2c96a49b0a9b3e1d" {
		t.Errorf("ReplicationID = %q", snap.ReplicationID)
	}
	if snap.ReplicationOffset != 100 {
		t.Errorf("ReplicationOffset = %d, want 100", snap.ReplicationOffset)
	}
	if snap.OffsetLag != 150 {
		t.Errorf("OffsetLag = %d, want 150", snap.OffsetLag)
	}
}

func TestCollector_OffsetLagNeverNegative(t *testing.T) {
	c := NewCollector(zerolog.Nop())
	defer c.Close()

	c.RecordOffset("x", 200, 100)
	snap := c.Snapshot()
	if snap.OffsetLag != 0 {
		t.Errorf("OffsetLag = %d, want clamped to 0", snap.OffsetLag)
	}
}

func TestCollector_ErrorTracking(t *testing.T) {
	c := NewCollector(zerolog.Nop())
	defer c.Close()

	c.RecordError(nil)
	snap := c.Snapshot()
	if snap.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", snap.ErrorCount)
	}

	c.RecordError(fmt.Errorf("test error"))
	snap = c.Snapshot()
	if snap.ErrorCount != 2 {
		t.Errorf("ErrorCount = %d, want 2", snap.ErrorCount)
	}
	if snap.LastError != "test error" {
		t.Errorf("LastError = %q, want 'test error'", snap.LastError)
	}
}

func TestCollector_LogBuffer(t *testing.T) {
	c := NewCollector(zerolog.Nop())
	defer c.Close()

	for i := 0; i < 10; i++ {
		c.AddLog(LogEntry{
			Time:    time.Now(),
			Level:   "info",
			Message: fmt.Sprintf("log %d", i),
		})
	}

	logs := c.Logs()
	if len(logs) != 10 {
		t.Errorf("expected 10 logs, got %d", len(logs))
	}
}

func TestCollector_LogBufferEviction(t *testing.T) {
	c := NewCollector(zerolog.Nop())
	defer c.Close()

	for i := 0; i < 600; i++ {
		c.AddLog(LogEntry{
			Time:    time.Now(),
			Level:   "info",
			Message: fmt.Sprintf("log %d", i),
		})
	}

	logs := c.Logs()
	if len(logs) > 500 {
		t.Errorf("log buffer should not exceed capacity, got %d", len(logs))
	}
}

func TestCollector_SubscribeUnsubscribe(t *testing.T) {
	c := NewCollector(zerolog.Nop())
	defer c.Close()

	ch := c.Subscribe()
	c.Unsubscribe(ch)

	// Should not panic or deadlock.
	c.SetPhase("test")
}

func TestCollector_Elapsed(t *testing.T) {
	c := NewCollector(zerolog.Nop())
	defer c.Close()

	c.SetPhase("snapshot")
	time.Sleep(50 * time.Millisecond)
	snap := c.Snapshot()
	if snap.ElapsedSec < 0.04 {
		t.Errorf("ElapsedSec = %f, expected > 0.04", snap.ElapsedSec)
	}
}

func TestSlidingWindow_Rate(t *testing.T) {
	w := newSlidingWindow(5 * time.Second)
	now := time.Now()

	w.Add(now.Add(-3*time.Second), 30)
	w.Add(now.Add(-2*time.Second), 20)
	w.Add(now.Add(-1*time.Second), 10)

	rate := w.Rate()
	if rate <= 0 {
		t.Errorf("Rate() = %f, want > 0", rate)
	}
}

func TestSlidingWindow_Eviction(t *testing.T) {
	w := newSlidingWindow(100 * time.Millisecond)
	now := time.Now()

	w.Add(now.Add(-200*time.Millisecond), 100)
	w.Add(now, 50)

	rate := w.Rate()
	if rate != 50 {
		t.Errorf("Rate() = %f, want 50 (the older entry evicted)", rate)
	}
}

func TestSlidingWindow_Empty(t *testing.T) {
	w := newSlidingWindow(time.Second)
	if r := w.Rate(); r != 0 {
		t.Errorf("Rate() on empty window = %f, want 0", r)
	}
}
