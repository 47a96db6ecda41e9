package convert

import (
	"github.com/jfoltran/copyredis/internal/request"
	"github.com/jfoltran/copyredis/internal/upstream"
)

// Dropped is the set of verbs that must never reach a routed (sharded or
// cluster) target: each operates across keys that may not share a shard, so
// faithful re-execution on one node is wrong and re-execution on every node
// double-writes. The converter still converts these verbs; the routed
// dispatchers check IsDropped, skip the command and log it.
var Dropped = map[string]bool{
	"BITOP":       true,
	"EVAL":        true,
	"EVALSHA":     true,
	"MULTI":       true,
	"EXEC":        true,
	"PFMERGE":     true,
	"SDIFFSTORE":  true,
	"SINTERSTORE": true,
	"SUNIONSTORE": true,
	"ZUNIONSTORE": true,
	"ZINTERSTORE": true,
	"PUBLISH":     true,
}

// IsDropped reports whether cmd's verb is in the routed-mode drop set.
func IsDropped(cmd upstream.Command) bool {
	return Dropped[cmd.CommandName()]
}

// ExpandedRequest pairs one request produced by routed-mode expansion with
// the key the sharded dispatcher must route on — the element being acted
// on, not args[0] of the multi-key original.
type ExpandedRequest struct {
	Request request.Request
	Key     []byte
}

// Expand splits a multi-key mutation into one request per key, for sharded
// mode only (cluster mode does not apply this — see the dispatch package).
// ok is false for any command that isn't one of the five expandable verbs.
func Expand(cmd upstream.Command) (out []ExpandedRequest, ok bool) {
	switch v := cmd.(type) {
	case *upstream.Del:
		for _, k := range v.Keys {
			out = append(out, ExpandedRequest{request.NewBytes("DEL", k), k})
		}
		return out, true
	case *upstream.Unlink:
		for _, k := range v.Keys {
			out = append(out, ExpandedRequest{request.NewBytes("UNLINK", k), k})
		}
		return out, true
	case *upstream.MSet:
		for _, p := range v.Pairs {
			out = append(out, ExpandedRequest{request.NewBytes("SET", p.Key, p.Value), p.Key})
		}
		return out, true
	case *upstream.MSetNX:
		// MSETNX's all-or-nothing guarantee does not survive expansion: each
		// pair becomes its own SETNX. Documented, not recovered.
		for _, p := range v.Pairs {
			out = append(out, ExpandedRequest{request.NewBytes("SETNX", p.Key, p.Value), p.Key})
		}
		return out, true
	case *upstream.PFCount:
		// Union cardinality becomes per-key cardinality. Documented, not recovered.
		for _, k := range v.Keys {
			out = append(out, ExpandedRequest{request.NewBytes("PFCOUNT", k), k})
		}
		return out, true
	default:
		return nil, false
	}
}

// Broadcast is the set of administrative verbs that carry no key domain and
// so must be enqueued to every shard rather than routed to one. SELECT is
// not here: it never reaches the converter as a pipelined request (see
// convert.SelectDB) because db changes are carried out-of-band as a SwapDB
// message to every worker, not a literal broadcast command.
var Broadcast = map[string]bool{
	"SCRIPT":   true, // covers both SCRIPT FLUSH and SCRIPT LOAD
	"SWAPDB":   true,
	"FLUSHDB":  true,
	"FLUSHALL": true,
}
