package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// TargetStatus represents a target's current place in the replication
// lifecycle.
type TargetStatus string

const (
	TargetPending   TargetStatus = "pending"
	TargetSyncing   TargetStatus = "syncing"   // snapshot copy in progress
	TargetStreaming TargetStatus = "streaming" // applying the live mutation stream
)

// TargetProgress tracks per-target dispatch progress.
type TargetProgress struct {
	Address         string       `json:"address"`
	Status          TargetStatus `json:"status"`
	QueueDepth      int          `json:"queue_depth"`
	RequestsSent    int64        `json:"requests_sent"`
	RequestsDropped int64        `json:"requests_dropped"`
	ElapsedSec      float64      `json:"elapsed_sec"`
	StartedAt       time.Time    `json:"-"`
}

// Snapshot is the complete metrics state at a point in time.
type Snapshot struct {
	Timestamp  time.Time `json:"timestamp"`
	Phase      string    `json:"phase"`
	ElapsedSec float64   `json:"elapsed_sec"`

	// Replication position tracking.
	ReplicationID     string `json:"replication_id"`
	ReplicationOffset int64  `json:"replication_offset"`
	LatestOffset      int64  `json:"latest_offset"`
	OffsetLag         int64  `json:"offset_lag"`

	// Dispatch progress.
	TargetsTotal int              `json:"targets_total"`
	Targets      []TargetProgress `json:"targets"`

	// Throughput.
	RequestsPerSec float64 `json:"requests_per_sec"`
	TotalRequests  int64   `json:"total_requests"`

	// Errors.
	ErrorCount int    `json:"error_count"`
	LastError  string `json:"last_error,omitempty"`
}

// LogEntry represents a log line captured for the UI.
type LogEntry struct {
	Time    time.Time         `json:"time"`
	Level   string            `json:"level"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Collector aggregates bridge metrics and provides snapshots for consumption
// by the status HTTP/WebSocket surface and the TUI.
type Collector struct {
	logger zerolog.Logger

	mu          sync.RWMutex
	phase       string
	startedAt   time.Time
	targets     map[string]*TargetProgress // key: target address
	targetOrder []string                   // insertion-order keys

	replicationID     atomic.Value // string
	replicationOffset atomic.Int64
	latestOffset      atomic.Int64

	totalRequests atomic.Int64

	errorCount atomic.Int64
	lastError  atomic.Value // string

	// Throughput tracking (sliding window).
	requestWindow *slidingWindow

	// Subscribers for push-based updates.
	subMu       sync.Mutex
	subscribers map[chan Snapshot]struct{}

	// Log ring buffer.
	logMu  sync.Mutex
	logs   []LogEntry
	logCap int

	done chan struct{}
}

// NewCollector creates a new Collector.
func NewCollector(logger zerolog.Logger) *Collector {
	c := &Collector{
		logger:        logger.With().Str("component", "metrics").Logger(),
		targets:       make(map[string]*TargetProgress),
		subscribers:   make(map[chan Snapshot]struct{}),
		requestWindow: newSlidingWindow(60 * time.Second),
		logs:          make([]LogEntry, 0, 500),
		logCap:        500,
		done:          make(chan struct{}),
	}
	go c.broadcastLoop()
	return c
}

// SetPhase updates the current bridge phase ("connecting", "snapshot",
// "streaming", ...).
func (c *Collector) SetPhase(phase string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = phase
	if c.startedAt.IsZero() {
		c.startedAt = time.Now()
	}
}

// SetTargets initialises the per-target tracking list, in dispatch order.
func (c *Collector) SetTargets(addrs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.targets = make(map[string]*TargetProgress, len(addrs))
	c.targetOrder = make([]string, 0, len(addrs))
	for _, addr := range addrs {
		c.targets[addr] = &TargetProgress{Address: addr, Status: TargetPending}
		c.targetOrder = append(c.targetOrder, addr)
	}
}

// TargetSyncing marks a target as actively receiving the snapshot.
func (c *Collector) TargetSyncing(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tp, ok := c.targets[addr]; ok {
		tp.Status = TargetSyncing
		tp.StartedAt = time.Now()
	}
}

// TargetStreaming marks a target as caught up and applying the live stream.
func (c *Collector) TargetStreaming(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tp, ok := c.targets[addr]; ok {
		tp.Status = TargetStreaming
		if !tp.StartedAt.IsZero() {
			tp.ElapsedSec = time.Since(tp.StartedAt).Seconds()
		}
	}
}

// RecordSent records n requests flushed to addr, plus its worker's current
// inbox depth.
func (c *Collector) RecordSent(addr string, n int, queueDepth int) {
	c.mu.Lock()
	if tp, ok := c.targets[addr]; ok {
		tp.RequestsSent += int64(n)
		tp.QueueDepth = queueDepth
		if !tp.StartedAt.IsZero() {
			tp.ElapsedSec = time.Since(tp.StartedAt).Seconds()
		}
	}
	c.mu.Unlock()

	c.totalRequests.Add(int64(n))
	c.requestWindow.Add(time.Now(), float64(n))
}

// RecordDropped records a batch of n requests discarded for addr after a
// pipeline failure.
func (c *Collector) RecordDropped(addr string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tp, ok := c.targets[addr]; ok {
		tp.RequestsDropped += int64(n)
	}
}

// RecordOffset updates the upstream replication id/offset and, when known,
// the latest offset the source has reported (for lag calculation).
func (c *Collector) RecordOffset(replID string, offset, latest int64) {
	c.replicationID.Store(replID)
	c.replicationOffset.Store(offset)
	if latest > 0 {
		c.latestOffset.Store(latest)
	}
}

// RecordError increments the error count and stores the last error message.
func (c *Collector) RecordError(err error) {
	c.errorCount.Add(1)
	if err != nil {
		c.lastError.Store(err.Error())
	}
}

// AddLog appends a log entry to the ring buffer.
func (c *Collector) AddLog(entry LogEntry) {
	c.logMu.Lock()
	defer c.logMu.Unlock()
	if len(c.logs) >= c.logCap {
		// Shift buffer: drop oldest quarter.
		n := c.logCap / 4
		copy(c.logs, c.logs[n:])
		c.logs = c.logs[:len(c.logs)-n]
	}
	c.logs = append(c.logs, entry)
}

// Logs returns a copy of recent log entries.
func (c *Collector) Logs() []LogEntry {
	c.logMu.Lock()
	defer c.logMu.Unlock()
	out := make([]LogEntry, len(c.logs))
	copy(out, c.logs)
	return out
}

// Snapshot returns the current metrics state (thread-safe).
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	var elapsed float64
	if !c.startedAt.IsZero() {
		elapsed = now.Sub(c.startedAt).Seconds()
	}

	targets := make([]TargetProgress, 0, len(c.targetOrder))
	for _, addr := range c.targetOrder {
		targets = append(targets, *c.targets[addr])
	}

	var lastErr string
	if v := c.lastError.Load(); v != nil {
		lastErr = v.(string)
	}
	var replID string
	if v := c.replicationID.Load(); v != nil {
		replID = v.(string)
	}

	offset := c.replicationOffset.Load()
	latest := c.latestOffset.Load()
	lag := latest - offset
	if lag < 0 {
		lag = 0
	}

	return Snapshot{
		Timestamp:         now,
		Phase:             c.phase,
		ElapsedSec:        elapsed,
		ReplicationID:     replID,
		ReplicationOffset: offset,
		LatestOffset:      latest,
		OffsetLag:         lag,
		TargetsTotal:      len(c.targetOrder),
		Targets:           targets,
		RequestsPerSec:    c.requestWindow.Rate(),
		TotalRequests:     c.totalRequests.Load(),
		ErrorCount:        int(c.errorCount.Load()),
		LastError:         lastErr,
	}
}

// Subscribe returns a channel that receives periodic Snapshot updates.
func (c *Collector) Subscribe() chan Snapshot {
	ch := make(chan Snapshot, 4)
	c.subMu.Lock()
	c.subscribers[ch] = struct{}{}
	c.subMu.Unlock()
	return ch
}

// Unsubscribe removes a subscription channel.
func (c *Collector) Unsubscribe(ch chan Snapshot) {
	c.subMu.Lock()
	delete(c.subscribers, ch)
	c.subMu.Unlock()
}

// Close stops the broadcast loop.
func (c *Collector) Close() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}

func (c *Collector) broadcastLoop() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			snap := c.Snapshot()
			c.subMu.Lock()
			for ch := range c.subscribers {
				select {
				case ch <- snap:
				default:
					// Subscriber too slow, skip.
				}
			}
			c.subMu.Unlock()
		}
	}
}

// --- Sliding window for throughput calculation ---

type windowEntry struct {
	time  time.Time
	value float64
}

type slidingWindow struct {
	mu      sync.Mutex
	entries []windowEntry
	window  time.Duration
}

func newSlidingWindow(d time.Duration) *slidingWindow {
	return &slidingWindow{
		entries: make([]windowEntry, 0, 128),
		window:  d,
	}
}

func (w *slidingWindow) Add(t time.Time, val float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = append(w.entries, windowEntry{time: t, value: val})
	w.evict(t)
}

func (w *slidingWindow) Rate() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := time.Now()
	w.evict(now)
	if len(w.entries) == 0 {
		return 0
	}
	var total float64
	for _, e := range w.entries {
		total += e.value
	}
	elapsed := now.Sub(w.entries[0].time).Seconds()
	if elapsed < 1 {
		elapsed = 1
	}
	return total / elapsed
}

func (w *slidingWindow) evict(now time.Time) {
	cutoff := now.Add(-w.window)
	i := 0
	for i < len(w.entries) && w.entries[i].time.Before(cutoff) {
		i++
	}
	if i > 0 {
		copy(w.entries, w.entries[i:])
		w.entries = w.entries[:len(w.entries)-i]
	}
}
