// Package dispatch implements the standalone dispatcher and the two routed
// modes: sharded (client-side consistent hash) and cluster (delegated to a
// cluster-aware connection).
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfoltran/copyredis/internal/convert"
	"github.com/jfoltran/copyredis/internal/hashring"
	"github.com/jfoltran/copyredis/internal/request"
	"github.com/jfoltran/copyredis/internal/sink"
	"github.com/jfoltran/copyredis/internal/upstream"
	"github.com/jfoltran/copyredis/internal/worker"
)

// DialFunc opens the connection a new shard worker will own.
type DialFunc func(addr string) sink.Executor

// ShardedConfig configures a ShardedDispatcher.
type ShardedConfig struct {
	Addresses     []string
	BatchSize     int
	FlushInterval time.Duration
	Dial          DialFunc
}

// ShardedDispatcher routes every canonical request to a physical shard via
// consistent hashing, broadcasting administrative requests to all shards.
type ShardedDispatcher struct {
	ring      *hashring.Ring
	workers   map[string]*worker.Worker
	order     []string
	converter *convert.Converter
	log       zerolog.Logger
	wg        sync.WaitGroup

	currentDB atomic.Int64
}

// NewSharded builds the routing table, dials one connection per address,
// and starts one worker goroutine per shard.
func NewSharded(ctx context.Context, cfg ShardedConfig, running *atomic.Bool, log zerolog.Logger) *ShardedDispatcher {
	ring := hashring.Build(cfg.Addresses)
	d := &ShardedDispatcher{
		ring:      ring,
		workers:   make(map[string]*worker.Worker, len(cfg.Addresses)),
		order:     append([]string(nil), cfg.Addresses...),
		converter: convert.New(),
		log:       log.With().Str("component", "sharded-dispatcher").Logger(),
	}
	d.currentDB.Store(-1)
	for _, addr := range cfg.Addresses {
		conn := cfg.Dial(addr)
		w := worker.New(worker.Config{
			Target:        addr,
			BatchSize:     cfg.BatchSize,
			FlushInterval: cfg.FlushInterval,
		}, conn, running, log)
		d.workers[addr] = w
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			w.Run(ctx)
		}()
	}
	return d
}

// HandleSnapshot converts obj and routes its requests by key.
func (d *ShardedDispatcher) HandleSnapshot(obj upstream.Object) {
	d.syncDB(int64(obj.ObjectMeta().DB))
	for _, r := range d.converter.ConvertSnapshot(obj) {
		d.route(r, obj.ObjectKey())
	}
}

// HandleMutation converts cmd, applying the routed-mode drop and expansion
// policies, and routes (or broadcasts) the resulting requests. SELECT never
// reaches the converter: it is carried to every worker as a SwapDB message.
func (d *ShardedDispatcher) HandleMutation(cmd upstream.Command) {
	if db, ok := convert.SelectDB(cmd); ok {
		d.syncDB(db)
		return
	}
	if convert.IsDropped(cmd) {
		d.log.Warn().Str("verb", cmd.CommandName()).Msg("dropped cross-key command in sharded mode")
		return
	}
	if expanded, ok := convert.Expand(cmd); ok {
		for _, e := range expanded {
			d.route(e.Request, e.Key)
		}
		return
	}
	if xg, ok := cmd.(*upstream.XGroup); ok {
		for _, r := range d.converter.ConvertMutation(xg) {
			d.route(r, convert.RoutingKey(xg))
		}
		return
	}
	for _, r := range d.converter.ConvertMutation(cmd) {
		if convert.Broadcast[r.Verb] {
			d.broadcast(r)
			continue
		}
		key, ok := r.Key()
		if !ok {
			d.log.Error().Str("verb", r.Verb).Msg("cmd args is empty, cannot route")
			continue
		}
		d.route(r, key)
	}
}

func (d *ShardedDispatcher) route(r request.Request, key []byte) {
	addr, ok := d.ring.Route(key)
	if !ok {
		d.log.Error().Msg("routing table is empty")
		return
	}
	w, ok := d.workers[addr]
	if !ok {
		panic(fmt.Sprintf("routed to unknown shard %s", addr))
	}
	w.Send(worker.Enqueue{Request: r})
}

func (d *ShardedDispatcher) broadcast(r request.Request) {
	for _, addr := range d.order {
		d.workers[addr].Send(worker.Enqueue{Request: r})
	}
}

// syncDB tells every shard worker to select db before its next flush, but
// only when db actually changed since the last sync.
func (d *ShardedDispatcher) syncDB(db int64) {
	if d.currentDB.Swap(db) == db {
		return
	}
	for _, addr := range d.order {
		d.workers[addr].Send(worker.SwapDB{DB: db})
	}
}

// Close sends Terminate to every shard worker, waits for each to drain its
// pending batch and return, then closes every connection.
func (d *ShardedDispatcher) Close() {
	for _, addr := range d.order {
		d.workers[addr].Send(worker.Terminate{})
	}
	d.wg.Wait()
	for _, addr := range d.order {
		_ = d.workers[addr].Close()
	}
}
