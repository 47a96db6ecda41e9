// Package worker implements the per-target batching loop: the only
// component that ever touches a downstream connection.
package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfoltran/copyredis/internal/request"
	"github.com/jfoltran/copyredis/internal/sink"
)

// recvTick is the channel-receive timeout the loop polls at; it bounds how
// quickly Terminate and flush-interval expiry are noticed.
const recvTick = 10 * time.Millisecond

// Message is one item on a worker's inbox.
type Message interface{ isMessage() }

// Enqueue carries one canonical request to append to the current batch.
type Enqueue struct{ Request request.Request }

// SwapDB updates the worker's db-intent without flushing; the connection's
// next flush observes the new database via its acquisition check.
type SwapDB struct{ DB int64 }

// Terminate requests a clean shutdown: flush whatever is pending, then stop.
type Terminate struct{}

func (Enqueue) isMessage()   {}
func (SwapDB) isMessage()    {}
func (Terminate) isMessage() {}

// Config is a worker's fixed parameters for its whole lifetime.
type Config struct {
	Target        string
	BatchSize     int   // <= 0 means unbounded
	FlushInterval time.Duration
}

// Worker owns exactly one sink.Executor and drains its inbox into it.
type Worker struct {
	cfg     Config
	conn    sink.Executor
	inbox   chan Message
	log     zerolog.Logger
	running *atomic.Bool

	dbIntent atomic.Int64
}

// New constructs a worker against conn. running is the shared process-level
// flag; the worker clears it if it hits an extension error and aborts.
func New(cfg Config, conn sink.Executor, running *atomic.Bool, log zerolog.Logger) *Worker {
	w := &Worker{
		cfg:     cfg,
		conn:    conn,
		inbox:   make(chan Message, 10000),
		log:     log.With().Str("component", "worker").Str("target", cfg.Target).Logger(),
		running: running,
	}
	return w
}

// Inbox returns the channel the dispatcher sends Messages on.
func (w *Worker) Inbox() chan<- Message { return w.inbox }

// Run drains the inbox until a Terminate message is received or ctx is
// cancelled, then makes one last flush attempt of the pending batch and
// returns; if that attempt fails to acquire the connection, the batch is
// not written. It is meant to run on its own goroutine. On an extension
// error Run clears running and returns at once.
func (w *Worker) Run(ctx context.Context) {
	w.log.Info().Msg("worker started")
	var batch []request.Request
	batchStart := time.Now()
	shutdown := false

	for {
		if w.cfg.BatchSize <= 0 || len(batch) < w.cfg.BatchSize {
			select {
			case msg := <-w.inbox:
				switch m := msg.(type) {
				case Enqueue:
					batch = append(batch, m.Request)
				case SwapDB:
					w.dbIntent.Store(m.DB)
				case Terminate:
					shutdown = true
				}
			case <-time.After(recvTick):
			case <-ctx.Done():
				shutdown = true
			}
		}

		elapsed := time.Since(batchStart)
		if (elapsed >= w.cfg.FlushInterval || shutdown) && len(batch) > 0 {
			if err := w.conn.Acquire(context.Background(), w.dbIntent.Load()); err != nil {
				if sink.IsExtensionError(err) {
					w.log.Error().Err(err).Msg("extension error acquiring connection, aborting")
					w.running.Store(false)
					return
				}
				w.log.Error().Err(err).Int("batch_size", len(batch)).Msg("connection acquisition failed, keeping batch")
			} else if err := w.conn.Execute(context.Background(), batch); err != nil {
				if sink.IsExtensionError(err) {
					w.log.Error().Err(err).Msg("extension error on target, aborting")
					w.running.Store(false)
					return
				}
				w.log.Error().Err(err).Int("batch_size", len(batch)).Msg("pipeline execute failed, discarding batch")
				batch = batch[:0]
				batchStart = time.Now()
			} else {
				w.log.Debug().Int("batch_size", len(batch)).Msg("flushed")
				batch = batch[:0]
				batchStart = time.Now()
			}
		}

		if shutdown {
			break
		}
	}
	w.log.Info().Msg("worker terminated")
}

// Send enqueues msg, blocking if the inbox is full (the bounded channel is
// this bridge's backpressure point).
func (w *Worker) Send(msg Message) {
	w.inbox <- msg
}

// Close releases the worker's connection. Call only after Run has returned.
func (w *Worker) Close() error {
	return w.conn.Close()
}
