// Package convert maps upstream Snapshot Objects and Mutation Commands onto
// the canonical Request form the dispatchers and workers deal in.
package convert

import (
	"strconv"

	"github.com/jfoltran/copyredis/internal/request"
	"github.com/jfoltran/copyredis/internal/upstream"
)

// Converter is stateless; a single value can be shared across goroutines.
type Converter struct{}

func New() *Converter { return &Converter{} }

func i64(v int64) []byte { return strconv.AppendInt(nil, v, 10) }
func f64(v float64) []byte {
	return strconv.AppendFloat(nil, v, 'g', -1, 64)
}

// ConvertSnapshot turns one Snapshot Object into its primary request plus any
// expiry auxiliary, in the order the worker must execute them.
func (c *Converter) ConvertSnapshot(obj upstream.Object) []request.Request {
	var out []request.Request
	switch o := obj.(type) {
	case *upstream.String:
		out = append(out, request.NewBytes("SET", o.Key, o.Value))
	case *upstream.List:
		args := append([][]byte{o.Key}, o.Values...)
		out = append(out, request.NewBytes("RPUSH", args...))
	case *upstream.SetObject:
		args := append([][]byte{o.Key}, o.Members...)
		out = append(out, request.NewBytes("SADD", args...))
	case *upstream.SortedSet:
		args := [][]byte{o.Key}
		for _, item := range o.Items {
			args = append(args, f64(item.Score), item.Member)
		}
		out = append(out, request.NewBytes("ZADD", args...))
	case *upstream.Hash:
		args := [][]byte{o.Key}
		for _, f := range o.Fields {
			args = append(args, f.Name, f.Value)
		}
		out = append(out, request.NewBytes("HMSET", args...))
	case *upstream.Stream:
		for _, entry := range o.Entries {
			args := [][]byte{o.Key, []byte(entry.ID)}
			for _, f := range entry.Fields {
				args = append(args, f.Name, f.Value)
			}
			out = append(out, request.NewBytes("XADD", args...))
		}
		for _, g := range o.Groups {
			out = append(out, request.New("XGROUP", "CREATE", string(o.Key), g.Name, g.LastID))
		}
	default:
		return nil
	}
	meta := obj.ObjectMeta()
	if meta.Expiry != nil {
		key := obj.ObjectKey()
		switch meta.Expiry.Kind {
		case upstream.ExpireSeconds:
			out = append(out, request.NewBytes("EXPIREAT", key, i64(meta.Expiry.At)))
		case upstream.ExpireMilliseconds:
			out = append(out, request.NewBytes("PEXPIREAT", key, i64(meta.Expiry.At)))
		}
	}
	return out
}

// ConvertMutation turns one Mutation Command into its one-to-one canonical
// request. It applies no drop or expansion policy — that is layered on by
// the dispatchers (see the Policy functions in this package).
func (c *Converter) ConvertMutation(cmd upstream.Command) []request.Request {
	switch v := cmd.(type) {
	case *upstream.Append:
		return one("APPEND", v.Key, v.Value)
	case *upstream.Bitfield:
		return []request.Request{convertBitfield(v)}
	case *upstream.BitOp:
		args := append([][]byte{[]byte(v.Op), v.DestKey}, v.Keys...)
		return one2("BITOP", args)
	case *upstream.BrPopLPush:
		return one("BRPOPLPUSH", v.Source, v.Destination, i64(v.TimeoutSeconds))
	case *upstream.Decr:
		return one("DECR", v.Key)
	case *upstream.DecrBy:
		return one("DECRBY", v.Key, i64(v.Decrement))
	case *upstream.Del:
		return one2("DEL", v.Keys)
	case *upstream.Eval:
		args := append([][]byte{v.Script, i64(v.NumKeys)}, v.Keys...)
		args = append(args, v.Args...)
		return one2("EVAL", args)
	case *upstream.EvalSha:
		args := append([][]byte{v.SHA1, i64(v.NumKeys)}, v.Keys...)
		args = append(args, v.Args...)
		return one2("EVALSHA", args)
	case *upstream.Expire:
		return one("EXPIRE", v.Key, i64(v.Seconds))
	case *upstream.ExpireAt:
		return one("EXPIREAT", v.Key, i64(v.Timestamp))
	case *upstream.Exec:
		return one2("EXEC", nil)
	case *upstream.FlushAll:
		if v.Async {
			return one2("FLUSHALL", [][]byte{[]byte("ASYNC")})
		}
		return one2("FLUSHALL", nil)
	case *upstream.FlushDB:
		if v.Async {
			return one2("FLUSHDB", [][]byte{[]byte("ASYNC")})
		}
		return one2("FLUSHDB", nil)
	case *upstream.GetSet:
		return one("GETSET", v.Key, v.Value)
	case *upstream.HDel:
		return one2("HDEL", append([][]byte{v.Key}, v.Fields...))
	case *upstream.HIncrBy:
		return one("HINCRBY", v.Key, v.Field, i64(v.Increment))
	case *upstream.HMSet:
		return one2("HMSET", hashFieldArgs(v.Key, v.Fields))
	case *upstream.HSet:
		return one2("HSET", hashFieldArgs(v.Key, v.Fields))
	case *upstream.HSetNX:
		return one("HSETNX", v.Key, v.Field, v.Value)
	case *upstream.Incr:
		return one("INCR", v.Key)
	case *upstream.IncrBy:
		return one("INCRBY", v.Key, i64(v.Increment))
	case *upstream.LInsert:
		pos := "AFTER"
		if v.Before {
			pos = "BEFORE"
		}
		return one("LINSERT", v.Key, []byte(pos), v.Pivot, v.Element)
	case *upstream.LPop:
		return one("LPOP", v.Key)
	case *upstream.LPush:
		return one2("LPUSH", append([][]byte{v.Key}, v.Elements...))
	case *upstream.LPushX:
		return one2("LPUSHX", append([][]byte{v.Key}, v.Elements...))
	case *upstream.LRem:
		return one("LREM", v.Key, i64(v.Count), v.Element)
	case *upstream.LSet:
		return one("LSET", v.Key, i64(v.Index), v.Element)
	case *upstream.LTrim:
		return one("LTRIM", v.Key, i64(v.Start), i64(v.Stop))
	case *upstream.Move:
		return one("MOVE", v.Key, i64(v.DB))
	case *upstream.MSet:
		return one2("MSET", kvArgs(v.Pairs))
	case *upstream.MSetNX:
		return one2("MSETNX", kvArgs(v.Pairs))
	case *upstream.Multi:
		return one2("MULTI", nil)
	case *upstream.Persist:
		return one("PERSIST", v.Key)
	case *upstream.PExpire:
		return one("PEXPIRE", v.Key, i64(v.Milliseconds))
	case *upstream.PExpireAt:
		return one("PEXPIREAT", v.Key, i64(v.MillisecondsAtUTC))
	case *upstream.PFAdd:
		return one2("PFADD", append([][]byte{v.Key}, v.Elements...))
	case *upstream.PFCount:
		return one2("PFCOUNT", v.Keys)
	case *upstream.PFMerge:
		return one2("PFMERGE", append([][]byte{v.DestKey}, v.SourceKeys...))
	case *upstream.PSetEX:
		return one("PSETEX", v.Key, i64(v.Milliseconds), v.Value)
	case *upstream.Publish:
		return one("PUBLISH", v.Channel, v.Message)
	case *upstream.Rename:
		return one("RENAME", v.Key, v.NewKey)
	case *upstream.RenameNX:
		return one("RENAMENX", v.Key, v.NewKey)
	case *upstream.Restore:
		return []request.Request{convertRestore(v)}
	case *upstream.RPop:
		return one("RPOP", v.Key)
	case *upstream.RPopLPush:
		return one("RPOPLPUSH", v.Source, v.Destination)
	case *upstream.RPush:
		return one2("RPUSH", append([][]byte{v.Key}, v.Elements...))
	case *upstream.RPushX:
		return one2("RPUSHX", append([][]byte{v.Key}, v.Elements...))
	case *upstream.SAdd:
		return one2("SADD", append([][]byte{v.Key}, v.Members...))
	case *upstream.ScriptFlush:
		return one("SCRIPT", []byte("FLUSH"))
	case *upstream.ScriptLoad:
		return one("SCRIPT", []byte("LOAD"), v.Script)
	case *upstream.SDiffStore:
		return one2("SDIFFSTORE", append([][]byte{v.Destination}, v.Keys...))
	case *upstream.Set:
		return []request.Request{convertSet(v)}
	case *upstream.SetBit:
		return one("SETBIT", v.Key, i64(v.Offset), i64(v.Value))
	case *upstream.SetEX:
		return one("SETEX", v.Key, i64(v.Seconds), v.Value)
	case *upstream.SetNX:
		return one("SETNX", v.Key, v.Value)
	case *upstream.Select:
		// No canonical request: the dispatcher intercepts Select before
		// calling ConvertMutation and turns it into a worker SwapDB
		// message instead of a literal pipelined SELECT (see SelectDB).
		return nil
	case *upstream.SetRange:
		return one("SETRANGE", v.Key, i64(v.Offset), v.Value)
	case *upstream.SInterStore:
		return one2("SINTERSTORE", append([][]byte{v.Destination}, v.Keys...))
	case *upstream.SMove:
		return one("SMOVE", v.Source, v.Destination, v.Member)
	case *upstream.Sort:
		return []request.Request{convertSort(v)}
	case *upstream.SRem:
		return one2("SREM", append([][]byte{v.Key}, v.Members...))
	case *upstream.SUnionStore:
		return one2("SUNIONSTORE", append([][]byte{v.Destination}, v.Keys...))
	case *upstream.SwapDB:
		return one("SWAPDB", i64(v.Index1), i64(v.Index2))
	case *upstream.Unlink:
		return one2("UNLINK", v.Keys)
	case *upstream.ZAdd:
		return []request.Request{convertZAdd(v)}
	case *upstream.ZIncrBy:
		return one("ZINCRBY", v.Key, f64(v.Increment), v.Member)
	case *upstream.ZInterStore:
		return []request.Request{convertZStore("ZINTERSTORE", v.Destination, v.NumKeys, v.Keys, v.Weights, v.Aggregate)}
	case *upstream.ZPopMax:
		return []request.Request{convertZPop("ZPOPMAX", v.Key, v.Count)}
	case *upstream.ZPopMin:
		return []request.Request{convertZPop("ZPOPMIN", v.Key, v.Count)}
	case *upstream.ZRem:
		return one2("ZREM", append([][]byte{v.Key}, v.Members...))
	case *upstream.ZRemRangeByLex:
		return one("ZREMRANGEBYLEX", v.Key, v.Min, v.Max)
	case *upstream.ZRemRangeByRank:
		return one("ZREMRANGEBYRANK", v.Key, i64(v.Start), i64(v.Stop))
	case *upstream.ZRemRangeByScore:
		return one("ZREMRANGEBYSCORE", v.Key, v.Min, v.Max)
	case *upstream.ZUnionStore:
		// destination emitted once: the source emits it twice, a bug fixed here.
		return []request.Request{convertZStore("ZUNIONSTORE", v.Destination, v.NumKeys, v.Keys, v.Weights, v.Aggregate)}
	case *upstream.XAck:
		args := [][]byte{v.Key, v.Group}
		args = append(args, idArgs(v.IDs)...)
		return one2("XACK", args)
	case *upstream.XAdd:
		return one2("XADD", hashFieldArgsWithID(v.Key, v.ID, v.Fields))
	case *upstream.XClaim:
		return []request.Request{convertXClaim(v)}
	case *upstream.XDel:
		return one2("XDEL", append([][]byte{v.Key}, idArgs(v.IDs)...))
	case *upstream.XGroup:
		return []request.Request{convertXGroup(v)}
	case *upstream.XTrim:
		args := [][]byte{v.Key, []byte("MAXLEN")}
		if v.Approximation {
			args = append(args, []byte("~"))
		}
		args = append(args, i64(v.Count))
		return one2("XTRIM", args)
	case *upstream.Other:
		return one2(v.Name, v.Args)
	default:
		return nil
	}
}

func one(verb string, args ...[]byte) []request.Request {
	return []request.Request{request.NewBytes(verb, args...)}
}

func one2(verb string, args [][]byte) []request.Request {
	return []request.Request{request.NewBytes(verb, args...)}
}

func hashFieldArgs(key []byte, fields []upstream.HashField) [][]byte {
	args := [][]byte{key}
	for _, f := range fields {
		args = append(args, f.Name, f.Value)
	}
	return args
}

func hashFieldArgsWithID(key []byte, id string, fields []upstream.HashField) [][]byte {
	args := [][]byte{key, []byte(id)}
	for _, f := range fields {
		args = append(args, f.Name, f.Value)
	}
	return args
}

func kvArgs(pairs []upstream.KV) [][]byte {
	var args [][]byte
	for _, p := range pairs {
		args = append(args, p.Key, p.Value)
	}
	return args
}

func idArgs(ids []string) [][]byte {
	args := make([][]byte, len(ids))
	for i, id := range ids {
		args[i] = []byte(id)
	}
	return args
}

func convertBitfield(v *upstream.Bitfield) request.Request {
	args := [][]byte{v.Key}
	for _, op := range v.Ops {
		switch op.Kind {
		case "GET":
			args = append(args, []byte("GET"), []byte(op.Type), i64(op.Offset))
		case "INCRBY":
			args = append(args, []byte("INCRBY"), []byte(op.Type), i64(op.Offset), i64(op.Value))
		case "SET":
			args = append(args, []byte("SET"), []byte(op.Type), i64(op.Offset), i64(op.Value))
		}
	}
	for _, of := range v.Overflows {
		args = append(args, []byte("OVERFLOW"), []byte(of))
	}
	return request.NewBytes("BITFIELD", args...)
}

func convertRestore(v *upstream.Restore) request.Request {
	args := [][]byte{v.Key, i64(v.TTL), v.Value}
	if v.Replace {
		args = append(args, []byte("REPLACE"))
	}
	if v.AbsTTL {
		args = append(args, []byte("ABSTTL"))
	}
	if v.IdleTime != nil {
		args = append(args, []byte("IDLETIME"), i64(*v.IdleTime))
	}
	if v.Freq != nil {
		args = append(args, []byte("FREQ"), i64(*v.Freq))
	}
	return request.NewBytes("RESTORE", args...)
}

func convertSet(v *upstream.Set) request.Request {
	args := [][]byte{v.Key, v.Value}
	if v.Expire != nil {
		switch v.Expire.Kind {
		case upstream.SetExpireEX:
			args = append(args, []byte("EX"), v.Expire.Value)
		case upstream.SetExpirePX:
			args = append(args, []byte("PX"), v.Expire.Value)
		}
	}
	switch v.Exist {
	case upstream.SetExistNX:
		args = append(args, []byte("NX"))
	case upstream.SetExistXX:
		args = append(args, []byte("XX"))
	}
	if v.KeepTTL {
		args = append(args, []byte("KEEPTTL"))
	}
	return request.NewBytes("SET", args...)
}

func convertSort(v *upstream.Sort) request.Request {
	args := [][]byte{v.Key}
	if v.ByPattern != nil {
		args = append(args, []byte("BY"), v.ByPattern)
	}
	if v.Limit != nil {
		args = append(args, []byte("LIMIT"), i64(v.Limit.Offset), i64(v.Limit.Count))
	}
	for _, p := range v.GetPatterns {
		args = append(args, []byte("GET"), p)
	}
	if v.HasOrder {
		if v.Desc {
			args = append(args, []byte("DESC"))
		} else {
			args = append(args, []byte("ASC"))
		}
	}
	if v.Alpha {
		args = append(args, []byte("ALPHA"))
	}
	if v.Store != nil {
		args = append(args, []byte("STORE"), v.Store)
	}
	return request.NewBytes("SORT", args...)
}

func convertZAdd(v *upstream.ZAdd) request.Request {
	args := [][]byte{v.Key}
	switch v.Exist {
	case upstream.SetExistNX:
		args = append(args, []byte("NX"))
	case upstream.SetExistXX:
		args = append(args, []byte("XX"))
	}
	if v.CH {
		args = append(args, []byte("CH"))
	}
	if v.Incr {
		args = append(args, []byte("INCR"))
	}
	for _, item := range v.Items {
		args = append(args, f64(item.Score), item.Member)
	}
	return request.NewBytes("ZADD", args...)
}

func convertZStore(verb string, dest []byte, numKeys int64, keys [][]byte, weights []float64, agg upstream.ZAggregate) request.Request {
	args := [][]byte{dest, i64(numKeys)}
	args = append(args, keys...)
	if len(weights) > 0 {
		args = append(args, []byte("WEIGHTS"))
		for _, w := range weights {
			args = append(args, f64(w))
		}
	}
	switch agg {
	case upstream.ZAggregateSum:
		args = append(args, []byte("AGGREGATE"), []byte("SUM"))
	case upstream.ZAggregateMin:
		args = append(args, []byte("AGGREGATE"), []byte("MIN"))
	case upstream.ZAggregateMax:
		args = append(args, []byte("AGGREGATE"), []byte("MAX"))
	}
	return request.NewBytes(verb, args...)
}

func convertZPop(verb string, key []byte, count *int64) request.Request {
	args := [][]byte{key}
	if count != nil {
		args = append(args, i64(*count))
	}
	return request.NewBytes(verb, args...)
}

func convertXClaim(v *upstream.XClaim) request.Request {
	args := [][]byte{v.Key, v.Group, v.Consumer, i64(v.MinIdleTime)}
	args = append(args, idArgs(v.IDs)...)
	if v.Idle != nil {
		args = append(args, []byte("IDLE"), i64(*v.Idle))
	}
	if v.Time != nil {
		args = append(args, []byte("TIME"), i64(*v.Time))
	}
	if v.RetryCount != nil {
		args = append(args, []byte("RETRYCOUNT"), i64(*v.RetryCount))
	}
	if v.Force {
		args = append(args, []byte("FORCE"))
	}
	if v.JustID {
		args = append(args, []byte("JUSTID"))
	}
	return request.NewBytes("XCLAIM", args...)
}

func convertXGroup(v *upstream.XGroup) request.Request {
	var args [][]byte
	switch {
	case v.Create != nil:
		args = [][]byte{[]byte("CREATE"), v.Create.Key, v.Create.GroupName, []byte(v.Create.ID)}
	case v.SetID != nil:
		args = [][]byte{[]byte("SETID"), v.SetID.Key, v.SetID.GroupName, []byte(v.SetID.ID)}
	case v.Destroy != nil:
		args = [][]byte{[]byte("DESTROY"), v.Destroy.Key, v.Destroy.GroupName}
	case v.DelConsumer != nil:
		args = [][]byte{[]byte("DELCONSUMER"), v.DelConsumer.Key, v.DelConsumer.GroupName, v.DelConsumer.ConsumerName}
	}
	return request.NewBytes("XGROUP", args...)
}

// SelectDB reports the target database of a Select command, if cmd is one.
// Dispatchers check this before conversion and issue a worker.SwapDB message
// instead of a pipelined request — the connection-acquisition hook design
// from the design notes, in place of the alternative (and deleted) design of
// emitting a literal SELECT into the pipeline on every db change.
func SelectDB(cmd upstream.Command) (db int64, ok bool) {
	sel, ok := cmd.(*upstream.Select)
	if !ok {
		return 0, false
	}
	return sel.DB, true
}

// RoutingKey returns the stream key embedded in an XGROUP subcommand, used
// by the sharded dispatcher to route by stream key rather than args[0]
// (which, for XGROUP, is the subcommand name "CREATE"/"SETID"/...).
func RoutingKey(v *upstream.XGroup) []byte {
	switch {
	case v.Create != nil:
		return v.Create.Key
	case v.SetID != nil:
		return v.SetID.Key
	case v.Destroy != nil:
		return v.Destroy.Key
	case v.DelConsumer != nil:
		return v.DelConsumer.Key
	}
	return nil
}
