package dispatch

import "github.com/jfoltran/copyredis/internal/upstream"

// Dispatcher is the common surface the Supervisor drives regardless of
// topology: hand it events, then close it on shutdown. StandaloneDispatcher,
// ShardedDispatcher, and ClusterDispatcher all satisfy it.
type Dispatcher interface {
	HandleSnapshot(obj upstream.Object)
	HandleMutation(cmd upstream.Command)
	Close()
}

var (
	_ Dispatcher = (*StandaloneDispatcher)(nil)
	_ Dispatcher = (*ShardedDispatcher)(nil)
	_ Dispatcher = (*ClusterDispatcher)(nil)
)
