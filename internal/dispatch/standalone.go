package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfoltran/copyredis/internal/convert"
	"github.com/jfoltran/copyredis/internal/upstream"
	"github.com/jfoltran/copyredis/internal/worker"
)

// StandaloneConfig configures a StandaloneDispatcher.
type StandaloneConfig struct {
	Target        string
	BatchSize     int
	FlushInterval time.Duration
	Dial          DialFunc
}

// StandaloneDispatcher sends every converted request to a single target
// unmodified: no drop policy, no expansion, no routing. It is the simplest
// of the three modes and the one the testable end-to-end scenarios exercise
// directly against a single target.
type StandaloneDispatcher struct {
	worker    *worker.Worker
	converter *convert.Converter
	log       zerolog.Logger
	wg        sync.WaitGroup

	currentDB atomic.Int64
}

// NewStandalone dials the single target and starts its worker.
func NewStandalone(ctx context.Context, cfg StandaloneConfig, running *atomic.Bool, log zerolog.Logger) *StandaloneDispatcher {
	conn := cfg.Dial(cfg.Target)
	w := worker.New(worker.Config{
		Target:        cfg.Target,
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
	}, conn, running, log)
	d := &StandaloneDispatcher{
		worker:    w,
		converter: convert.New(),
		log:       log.With().Str("component", "standalone-dispatcher").Logger(),
	}
	d.currentDB.Store(-1)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		w.Run(ctx)
	}()
	return d
}

// HandleSnapshot converts obj and enqueues every resulting request in order.
func (d *StandaloneDispatcher) HandleSnapshot(obj upstream.Object) {
	d.syncDB(int64(obj.ObjectMeta().DB))
	for _, r := range d.converter.ConvertSnapshot(obj) {
		d.worker.Send(worker.Enqueue{Request: r})
	}
}

// HandleMutation converts cmd and enqueues every resulting request. No drop
// or expansion policy applies: a single target has no partition to protect.
func (d *StandaloneDispatcher) HandleMutation(cmd upstream.Command) {
	if db, ok := convert.SelectDB(cmd); ok {
		d.syncDB(db)
		return
	}
	for _, r := range d.converter.ConvertMutation(cmd) {
		d.worker.Send(worker.Enqueue{Request: r})
	}
}

func (d *StandaloneDispatcher) syncDB(db int64) {
	if d.currentDB.Swap(db) == db {
		return
	}
	d.worker.Send(worker.SwapDB{DB: db})
}

// Close terminates the worker and waits for it to drain, then closes the
// connection.
func (d *StandaloneDispatcher) Close() {
	d.worker.Send(worker.Terminate{})
	d.wg.Wait()
	_ = d.worker.Close()
}
