package upstream

import (
	"context"
	"crypto/tls"
	"errors"
)

// EventHandler receives every Event the client decodes, snapshot entities
// first and then mutations, in the order they arrived on the wire.
type EventHandler func(Event)

// ClientConfig carries everything the external client needs to attach to
// the source: network/auth parameters plus the replication position to
// resume from.
type ClientConfig struct {
	Host      string
	Port      uint16
	Username  string
	Password  string
	TLSConfig *tls.Config // nil for a plaintext connection

	// ReplicationID/ReplicationOffset seed a partial resync. checkpoint.Unknown
	// forces a full snapshot.
	ReplicationID     string
	ReplicationOffset int64

	DiscardRDB bool // skip the snapshot copy entirely
	AOF        bool // continue into the live mutation stream after the snapshot
}

// Client is the replication client's boundary: the snapshot parser and
// streaming command decoder that talks the source's wire protocol. This is
// an external-collaborator interface — spec.md scopes the decoder itself
// out as a library concern — so only the shape the Supervisor drives lives
// here, never an implementation.
type Client interface {
	// SetEventHandler registers the sink for every decoded Event. Must be
	// called before Start.
	SetEventHandler(EventHandler)

	// Start connects, performs the snapshot (unless DiscardRDB), and — if
	// AOF is set — continues streaming mutations until ctx is cancelled or
	// a fatal error occurs. A nil error means the run completed normally
	// (snapshot-only mode with AOF off). A non-nil, non-fatal error is
	// restartable by the caller after a backoff; IsFatalClientError
	// distinguishes the two.
	Start(ctx context.Context) error

	// Position returns the most recently observed replication id/offset,
	// for checkpointing after Start returns.
	Position() (id string, offset int64)
}

// ClientFactory builds a fresh Client for one connection attempt. The
// Supervisor calls it once per restart-loop iteration so each retry gets a
// clean client seeded with the last known checkpoint.
type ClientFactory func(cfg ClientConfig) Client

// fatalClientError marks a Client.Start error as non-restartable (e.g. the
// protocol's NOPERM/NOAUTH privilege failure).
type fatalClientError struct{ err error }

func (e fatalClientError) Error() string { return e.err.Error() }
func (e fatalClientError) Unwrap() error { return e.err }

// NewFatalClientError wraps err so IsFatalClientError reports true for it.
// A Client implementation calls this to signal the Supervisor should abort
// rather than restart.
func NewFatalClientError(err error) error {
	return fatalClientError{err: err}
}

// IsFatalClientError reports whether err (returned from Client.Start) should
// abort the Supervisor's restart loop instead of triggering a backoff+retry.
func IsFatalClientError(err error) bool {
	var fe fatalClientError
	return err != nil && errors.As(err, &fe)
}
