package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfoltran/copyredis/internal/request"
	"github.com/jfoltran/copyredis/internal/testutil"
)

func newTestWorker(conn *testutil.RecordingExecutor, cfg Config) (*Worker, *atomic.Bool) {
	running := &atomic.Bool{}
	running.Store(true)
	w := New(cfg, conn, running, zerolog.Nop())
	return w, running
}

func TestWorkerFlushesOnShutdownWithPendingBatch(t *testing.T) {
	conn := &testutil.RecordingExecutor{}
	w, _ := newTestWorker(conn, Config{Target: "t", BatchSize: 100, FlushInterval: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() { w.Run(ctx); close(done) }()

	w.Send(Enqueue{Request: request.New("SET", "k", "v")})
	w.Send(Terminate{})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not terminate")
	}

	batches := conn.Batches()
	if len(batches) != 1 || len(batches[0]) != 1 {
		t.Fatalf("batches = %+v, want one batch of one request", batches)
	}
}

func TestWorkerEmptyBatchAtShutdownIssuesNoPipeline(t *testing.T) {
	conn := &testutil.RecordingExecutor{}
	w, _ := newTestWorker(conn, Config{Target: "t", BatchSize: 100, FlushInterval: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() { w.Run(ctx); close(done) }()
	w.Send(Terminate{})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not terminate")
	}

	if batches := conn.Batches(); len(batches) != 0 {
		t.Fatalf("batches = %+v, want none", batches)
	}
}

func TestWorkerFlushesOnInterval(t *testing.T) {
	conn := &testutil.RecordingExecutor{}
	w, _ := newTestWorker(conn, Config{Target: "t", BatchSize: 100, FlushInterval: 20 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() { w.Run(ctx); done <- struct{}{} }()

	w.Send(Enqueue{Request: request.New("SET", "a", "1")})
	w.Send(Enqueue{Request: request.New("SET", "b", "2")})
	w.Send(Enqueue{Request: request.New("SET", "c", "3")})

	time.Sleep(100 * time.Millisecond)
	w.Send(Terminate{})
	<-done

	batches := conn.Batches()
	if len(batches) == 0 {
		t.Fatal("expected at least one interval flush before shutdown")
	}
	if len(batches[0]) != 3 {
		t.Fatalf("first batch = %+v, want 3 requests flushed together", batches[0])
	}
}

func TestWorkerExtensionErrorAbortsAndClearsRunning(t *testing.T) {
	conn := &testutil.RecordingExecutor{Err: errors.New("NOPERM this user has no permissions")}
	w, running := newTestWorker(conn, Config{Target: "t", BatchSize: 100, FlushInterval: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() { w.Run(ctx); close(done) }()

	w.Send(Enqueue{Request: request.New("SET", "k", "v")})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not abort on extension error")
	}

	if running.Load() {
		t.Fatal("expected running flag cleared on extension error")
	}
}

func TestWorkerAcquisitionFailureKeepsBatch(t *testing.T) {
	conn := &testutil.RecordingExecutor{AcquireErr: errors.New("connection refused")}
	w, running := newTestWorker(conn, Config{Target: "t", BatchSize: 100, FlushInterval: 20 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() { w.Run(ctx); close(done) }()

	w.Send(Enqueue{Request: request.New("SET", "k", "v")})
	time.Sleep(100 * time.Millisecond)
	w.Send(Terminate{})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not terminate")
	}

	if batches := conn.Batches(); len(batches) != 0 {
		t.Fatalf("batches = %+v, want none — acquisition never succeeded so Execute must never run", batches)
	}
	if !running.Load() {
		t.Fatal("a non-extension acquisition error must not abort the worker")
	}
}

func TestWorkerSwapDBDoesNotFlush(t *testing.T) {
	conn := &testutil.RecordingExecutor{}
	w, _ := newTestWorker(conn, Config{Target: "t", BatchSize: 100, FlushInterval: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() { w.Run(ctx); close(done) }()

	w.Send(SwapDB{DB: 3})
	time.Sleep(50 * time.Millisecond)
	if got := w.dbIntent.Load(); got != 3 {
		t.Fatalf("dbIntent = %d, want 3", got)
	}
	if batches := conn.Batches(); len(batches) != 0 {
		t.Fatalf("SwapDB alone should not trigger a flush, got %+v", batches)
	}
	w.Send(Terminate{})
	<-done
}
