// Package bridge wires the dispatch pipeline's components — converter,
// dispatcher, worker pool, checkpoint store — into a runnable process: the
// Supervisor (spec component E).
package bridge

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfoltran/copyredis/internal/checkpoint"
	"github.com/jfoltran/copyredis/internal/config"
	"github.com/jfoltran/copyredis/internal/dispatch"
	"github.com/jfoltran/copyredis/internal/metrics"
	"github.com/jfoltran/copyredis/internal/upstream"
)

// restartBackoff is the pause between restart-loop attempts after a
// transient upstream error.
const restartBackoff = 2 * time.Second

// Supervisor owns the bridge's whole lifecycle: checkpoint load/seed,
// signal handling, one dispatcher built per the configured topology, the
// upstream restart loop, and checkpoint persistence on exit.
type Supervisor struct {
	cfg     config.Config
	client  upstream.ClientFactory
	dial    dispatch.DialFunc
	metrics *metrics.Collector
	log     zerolog.Logger

	running *atomic.Bool

	// checkpointDir overrides the checkpoint store's base directory; tests
	// set this to a temp dir instead of the user's home directory.
	checkpointDir string

	// backoff overrides restartBackoff for tests.
	backoff time.Duration
}

// New builds a Supervisor. client constructs a fresh upstream replication
// client for each restart-loop attempt, seeded with the last known
// checkpoint; mc is optional (nil disables metrics recording).
func New(cfg config.Config, client upstream.ClientFactory, mc *metrics.Collector, log zerolog.Logger) *Supervisor {
	return &Supervisor{
		cfg:     cfg,
		client:  client,
		dial:    dialerFor(cfg.Target, cfg.Identity),
		metrics: mc,
		log:     log.With().Str("component", "supervisor").Logger(),
		running: &atomic.Bool{},
		backoff: restartBackoff,
	}
}

// Run executes the full lifecycle and blocks until the upstream client
// completes, a fatal error occurs, or a shutdown signal/context cancellation
// clears the running flag. It always attempts to persist the checkpoint
// before returning, even on a fatal upstream error.
func (s *Supervisor) Run(ctx context.Context) error {
	s.running.Store(true)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			s.log.Info().Msg("shutdown signal received")
			s.running.Store(false)
		case <-ctx.Done():
		}
	}()

	store, err := checkpoint.Open(s.checkpointBaseDir(), s.cfg.Source.Addr())
	if err != nil {
		return fmt.Errorf("open checkpoint store: %w", err)
	}

	rec, err := store.Load()
	if err != nil {
		s.log.Warn().Err(err).Msg("checkpoint load failed, forcing full snapshot")
		rec = checkpoint.Unknown
	} else if rec == checkpoint.Unknown {
		s.log.Info().Msg("no checkpoint found, forcing full snapshot")
	} else {
		s.log.Info().Str("replication_id", rec.ReplicationID).Int64("replication_offset", rec.ReplicationOffset).Msg("resuming from checkpoint")
	}

	d := s.buildDispatcher(ctx)
	defer d.Close()

	if s.metrics != nil {
		s.metrics.SetTargets(config.Addrs(s.cfg.Target))
		s.metrics.SetPhase("connecting")
	}

	for s.running.Load() {
		rec = s.runOnce(ctx, d, rec)
		if !s.running.Load() {
			break
		}
	}

	if err := store.Save(rec); err != nil {
		s.log.Error().Err(err).Msg("checkpoint save failed")
		return fmt.Errorf("save checkpoint: %w", err)
	}
	s.log.Info().Str("replication_id", rec.ReplicationID).Int64("replication_offset", rec.ReplicationOffset).Msg("checkpoint saved")
	return nil
}

// runOnce builds one upstream client from rec, drives it to completion or
// failure, and returns the replication position to checkpoint next. It
// clears s.running on a fatal error or a completed (non-AOF) run.
func (s *Supervisor) runOnce(ctx context.Context, d dispatch.Dispatcher, rec checkpoint.Record) checkpoint.Record {
	cl := s.client(upstream.ClientConfig{
		Host:              s.cfg.Source.Host,
		Port:              s.cfg.Source.Port,
		Username:          s.cfg.Source.User,
		Password:          s.cfg.Source.Password,
		TLSConfig:         s.cfg.Source.TLSConfig(),
		ReplicationID:     rec.ReplicationID,
		ReplicationOffset: rec.ReplicationOffset,
		DiscardRDB:        s.cfg.DiscardRDB,
		AOF:               s.cfg.AOF,
	})
	cl.SetEventHandler(func(ev upstream.Event) {
		switch e := ev.(type) {
		case upstream.EventSnapshot:
			d.HandleSnapshot(e.Object)
		case upstream.EventMutation:
			d.HandleMutation(e.Command)
		}
	})

	if s.metrics != nil {
		s.metrics.SetPhase("snapshot")
	}

	startErr := cl.Start(ctx)
	if id, offset := cl.Position(); id != "" {
		rec = checkpoint.Record{ReplicationID: id, ReplicationOffset: offset}
		if s.metrics != nil {
			s.metrics.RecordOffset(id, offset, offset)
		}
	}

	switch {
	case startErr == nil:
		s.log.Info().Msg("upstream client completed")
		s.running.Store(false)
	case upstream.IsFatalClientError(startErr):
		s.log.Error().Err(startErr).Msg("fatal upstream error, aborting")
		if s.metrics != nil {
			s.metrics.RecordError(startErr)
		}
		s.running.Store(false)
	default:
		s.log.Warn().Err(startErr).Dur("backoff", s.backoff).Msg("transient upstream error, restarting")
		if s.metrics != nil {
			s.metrics.RecordError(startErr)
		}
		select {
		case <-time.After(s.backoff):
		case <-ctx.Done():
			s.running.Store(false)
		}
	}
	return rec
}

// buildDispatcher constructs exactly one dispatcher for the configured mode.
// config.Validate already rejects sharding+cluster both set and enforces the
// per-mode target-count requirements, so this is a straight dispatch on Mode.
func (s *Supervisor) buildDispatcher(ctx context.Context) dispatch.Dispatcher {
	switch s.cfg.Mode {
	case config.ModeSharded:
		return dispatch.NewSharded(ctx, dispatch.ShardedConfig{
			Addresses:     config.Addrs(s.cfg.Target),
			BatchSize:     s.cfg.BatchSize,
			FlushInterval: s.cfg.FlushInterval,
			Dial:          s.dial,
		}, s.running, s.log)
	case config.ModeCluster:
		return dispatch.NewCluster(ctx, dispatch.ClusterConfig{
			Target:        s.cfg.Target[0].Addr(),
			BatchSize:     s.cfg.BatchSize,
			FlushInterval: s.cfg.FlushInterval,
			Dial:          s.dial,
		}, s.running, s.log)
	default:
		return dispatch.NewStandalone(ctx, dispatch.StandaloneConfig{
			Target:        s.cfg.Target[0].Addr(),
			BatchSize:     s.cfg.BatchSize,
			FlushInterval: s.cfg.FlushInterval,
			Dial:          s.dial,
		}, s.running, s.log)
	}
}

func (s *Supervisor) checkpointBaseDir() string {
	if s.checkpointDir != "" {
		return s.checkpointDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
