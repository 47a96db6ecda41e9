// Package testutil provides small fakes shared across package tests: a
// recording sink.Executor and a scriptable upstream.Client, so dispatch,
// worker, and bridge tests don't each hand-roll the same double.
package testutil

import (
	"context"
	"sync"

	"github.com/jfoltran/copyredis/internal/request"
	"github.com/jfoltran/copyredis/internal/sink"
	"github.com/jfoltran/copyredis/internal/upstream"
)

// RecordingExecutor is a sink.Executor that records every acquired db and
// every pipelined batch, instead of talking to a real target. AcquireErr
// and Err let tests drive the two failure paths (connection acquisition vs.
// pipeline execution) independently.
type RecordingExecutor struct {
	mu         sync.Mutex
	batches    [][]request.Request
	dbs        []int64
	AcquireErr error
	Err        error
}

// Acquire satisfies sink.Executor.
func (e *RecordingExecutor) Acquire(_ context.Context, db int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.AcquireErr != nil {
		return e.AcquireErr
	}
	e.dbs = append(e.dbs, db)
	return nil
}

// Execute satisfies sink.Executor.
func (e *RecordingExecutor) Execute(_ context.Context, reqs []request.Request) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return e.Err
	}
	cp := make([]request.Request, len(reqs))
	copy(cp, reqs)
	e.batches = append(e.batches, cp)
	return nil
}

// Close satisfies sink.Executor.
func (e *RecordingExecutor) Close() error { return nil }

// All flattens every recorded batch in execution order.
func (e *RecordingExecutor) All() []request.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []request.Request
	for _, b := range e.batches {
		out = append(out, b...)
	}
	return out
}

// Batches returns a copy of the recorded batches, one entry per Execute call.
func (e *RecordingExecutor) Batches() [][]request.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]request.Request, len(e.batches))
	copy(out, e.batches)
	return out
}

// LastDB returns the db argument of the most recent successful Acquire call,
// or -1 if Acquire has never succeeded.
func (e *RecordingExecutor) LastDB() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.dbs) == 0 {
		return -1
	}
	return e.dbs[len(e.dbs)-1]
}

var _ sink.Executor = (*RecordingExecutor)(nil)

// ScriptedClient is an upstream.Client whose Start behaviour is supplied as
// an ordered list of steps, one consumed per Start call on the same
// ScriptedClient. A ClientFactory that returns one shared ScriptedClient
// walks the Supervisor's restart-loop attempts through the steps in order;
// a fresh ScriptedClient per attempt starts at the first step each time.
// Each step receives the registered EventHandler so it can feed Snapshot and
// Mutation events before returning its (possibly fatal) error.
type ScriptedClient struct {
	Steps     []func(ctx context.Context, h upstream.EventHandler) error
	PosID     string
	PosOffset int64

	mu      sync.Mutex
	calls   int
	handler upstream.EventHandler
}

// SetEventHandler satisfies upstream.Client.
func (c *ScriptedClient) SetEventHandler(h upstream.EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = h
}

// Start satisfies upstream.Client, consuming the next unexecuted step.
func (c *ScriptedClient) Start(ctx context.Context) error {
	c.mu.Lock()
	i := c.calls
	c.calls++
	h := c.handler
	c.mu.Unlock()
	return c.Steps[i](ctx, h)
}

// Position satisfies upstream.Client.
func (c *ScriptedClient) Position() (string, int64) { return c.PosID, c.PosOffset }

// Calls returns how many times Start has been invoked so far.
func (c *ScriptedClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

var _ upstream.Client = (*ScriptedClient)(nil)
