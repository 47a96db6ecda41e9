// Package sink wraps the pooled downstream connection a worker owns,
// matching the (addr) -> Connection interface with a pipelined execute.
package sink

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/jfoltran/copyredis/internal/request"
)

// Executor is the pipelined (addr) -> Connection interface the worker
// depends on; *Conn is the production implementation. Acquire and Execute
// are deliberately two calls, not one: acquisition failure and pipeline
// failure are different outcomes for the worker (see worker.Run), and
// bundling SELECT into the pipeline would make them indistinguishable.
type Executor interface {
	// Acquire resynchronizes the connection's selected database to db,
	// issuing SELECT only when it disagrees with what's already selected.
	Acquire(ctx context.Context, db int64) error
	// Execute pipelines reqs against the already-acquired connection.
	Execute(ctx context.Context, reqs []request.Request) error
	Close() error
}

// Conn is the single pooled connection one worker owns for its whole
// lifetime. PoolSize is fixed at 1: ordering on the wire is required for
// correctness on non-commutative command pairs, so there is never a second
// connection to race against.
type Conn struct {
	client   *redis.Client
	selected int64
	primed   bool
}

// Options configures a target connection.
type Options struct {
	Addr      string
	Username  string
	Password  string
	TLSConfig *tls.Config // nil for a plaintext connection
}

// Dial opens the connection. The actual TCP/TLS dial is lazy in go-redis;
// this just constructs the client.
func Dial(opts Options) *Conn {
	client := redis.NewClient(&redis.Options{
		Addr:      opts.Addr,
		Username:  opts.Username,
		Password:  opts.Password,
		TLSConfig: opts.TLSConfig,
		PoolSize:  1,
	})
	return &Conn{client: client, selected: -1}
}

// Acquire issues SELECT db as its own round trip, synchronously, if db
// disagrees with the database this connection last selected (or none has
// been selected yet). A failure here — e.g. NOPERM on SELECT — must not be
// confused with a pipeline-execute failure: the caller hasn't attempted the
// batch at all, so nothing in it has run.
func (c *Conn) Acquire(ctx context.Context, db int64) error {
	if c.primed && db == c.selected {
		return nil
	}
	if err := c.client.Do(ctx, "SELECT", db).Err(); err != nil {
		return err
	}
	c.selected = db
	c.primed = true
	return nil
}

// Execute pipelines reqs against the already-acquired connection, in
// enqueue order. Responses are not interpreted beyond success/failure: the
// converter's output is re-issued verbatim.
func (c *Conn) Execute(ctx context.Context, reqs []request.Request) error {
	if len(reqs) == 0 {
		return nil
	}
	pipe := c.client.Pipeline()
	for _, r := range reqs {
		args := make([]interface{}, 0, len(r.Args)+1)
		args = append(args, r.Verb)
		for _, a := range r.Args {
			args = append(args, a)
		}
		pipe.Do(ctx, args...)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Ping exercises the connection the way a keepalive would, surfacing an
// "extension error" (ACL/privilege failure) the same way a real command
// would, without mutating any key.
func (c *Conn) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying client and its single pooled connection.
func (c *Conn) Close() error {
	return c.client.Close()
}

// IsExtensionError reports whether err is the protocol's signal for a
// privilege/ACL problem (NOPERM/NOAUTH), as opposed to an ordinary transient
// failure. The worker treats this class as fatal rather than batch-discard.
func IsExtensionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "NOPERM") || strings.Contains(msg, "NOAUTH")
}
