package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfoltran/copyredis/internal/convert"
	"github.com/jfoltran/copyredis/internal/request"
	"github.com/jfoltran/copyredis/internal/upstream"
	"github.com/jfoltran/copyredis/internal/worker"
)

// ClusterConfig configures a ClusterDispatcher.
type ClusterConfig struct {
	Target        string // cluster-aware connection target (seed address)
	BatchSize     int
	FlushInterval time.Duration
	Dial          DialFunc
}

// ClusterDispatcher is degenerate routing: one worker wrapping a single
// cluster-aware connection that performs slot selection internally. It
// applies the converter's drop policy (the cluster client rejects cross-key
// commands with a slot-mismatch error) but not the expansion policy — the
// cluster client re-routes multi-key commands whose keys share a slot and
// otherwise errors on its own. This asymmetry with sharded mode is
// intentional and should be surfaced to the operator.
type ClusterDispatcher struct {
	worker    *worker.Worker
	converter *convert.Converter
	log       zerolog.Logger
	wg        sync.WaitGroup

	currentDB atomic.Int64
}

// NewCluster dials the cluster connection and starts its single worker.
func NewCluster(ctx context.Context, cfg ClusterConfig, running *atomic.Bool, log zerolog.Logger) *ClusterDispatcher {
	conn := cfg.Dial(cfg.Target)
	w := worker.New(worker.Config{
		Target:        cfg.Target,
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
	}, conn, running, log)
	d := &ClusterDispatcher{
		worker:    w,
		converter: convert.New(),
		log:       log.With().Str("component", "cluster-dispatcher").Logger(),
	}
	d.currentDB.Store(-1)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		w.Run(ctx)
	}()
	return d
}

// HandleSnapshot converts obj and enqueues its requests. Stream objects
// convert the same way as in standalone/sharded mode, including their
// consumer groups: XGROUP CREATE's key argument slots like any other keyed
// command, so there's nothing cluster-specific to restrict here.
func (d *ClusterDispatcher) HandleSnapshot(obj upstream.Object) {
	d.syncDB(int64(obj.ObjectMeta().DB))
	for _, r := range d.converter.ConvertSnapshot(obj) {
		d.enqueue(r)
	}
}

// HandleMutation applies the drop policy only, then enqueues. SELECT never
// reaches the converter: it is carried as a SwapDB message to the worker.
func (d *ClusterDispatcher) HandleMutation(cmd upstream.Command) {
	if db, ok := convert.SelectDB(cmd); ok {
		d.syncDB(db)
		return
	}
	if convert.IsDropped(cmd) {
		d.log.Warn().Str("verb", cmd.CommandName()).Msg("dropped cross-key command in cluster mode")
		return
	}
	for _, r := range d.converter.ConvertMutation(cmd) {
		d.enqueue(r)
	}
}

func (d *ClusterDispatcher) enqueue(r request.Request) {
	d.worker.Send(worker.Enqueue{Request: r})
}

// syncDB tells the worker to select db before its next flush, but only when
// db actually changed since the last sync.
func (d *ClusterDispatcher) syncDB(db int64) {
	if d.currentDB.Swap(db) == db {
		return
	}
	d.worker.Send(worker.SwapDB{DB: db})
}

// Close terminates the worker and waits for it to drain, then closes the
// connection.
func (d *ClusterDispatcher) Close() {
	d.worker.Send(worker.Terminate{})
	d.wg.Wait()
	_ = d.worker.Close()
}
