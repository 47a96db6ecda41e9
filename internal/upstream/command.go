package upstream

// Command is a tagged variant enumerating the mutating protocol verbs the
// decoder recognises. Each concrete type below is one verb with its typed
// fields, mirroring the decoder's own command enum.
type Command interface {
	CommandName() string
}

// SetExpireKind distinguishes SET's EX/PX options (as opposed to Expiry's
// absolute seconds/milliseconds — SET's option carries a relative/at value
// already resolved by the decoder into the bytes the wire expects).
type SetExpireKind int

const (
	SetExpireNone SetExpireKind = iota
	SetExpireEX
	SetExpirePX
)

type SetExistKind int

const (
	SetExistNone SetExistKind = iota
	SetExistNX
	SetExistXX
)

type Append struct{ Key, Value []byte }
type BitfieldOp struct {
	Kind   string // GET, SET, INCRBY
	Type   string
	Offset int64
	Value  int64 // SET value / INCRBY increment
}
type Bitfield struct {
	Key       []byte
	Ops       []BitfieldOp
	Overflows []string // WRAP, SAT, FAIL — preceding a subsequent op
}
type BitOp struct {
	Op      string // AND, OR, XOR, NOT
	DestKey []byte
	Keys    [][]byte
}
type BrPopLPush struct {
	Source, Destination []byte
	TimeoutSeconds       int64
}
type Decr struct{ Key []byte }
type DecrBy struct {
	Key       []byte
	Decrement int64
}
type Del struct{ Keys [][]byte }
type Eval struct {
	Script  []byte
	NumKeys int64
	Keys    [][]byte
	Args    [][]byte
}
type EvalSha struct {
	SHA1    []byte
	NumKeys int64
	Keys    [][]byte
	Args    [][]byte
}
type Expire struct {
	Key     []byte
	Seconds int64
}
type ExpireAt struct {
	Key       []byte
	Timestamp int64
}
type Exec struct{}
type FlushAll struct{ Async bool }
type FlushDB struct{ Async bool }
type GetSet struct{ Key, Value []byte }
type HDel struct {
	Key    []byte
	Fields [][]byte
}
type HIncrBy struct {
	Key       []byte
	Field     []byte
	Increment int64
}
type HMSet struct {
	Key    []byte
	Fields []HashField
}
type HSet struct {
	Key    []byte
	Fields []HashField
}
type HSetNX struct{ Key, Field, Value []byte }
type Incr struct{ Key []byte }
type IncrBy struct {
	Key       []byte
	Increment int64
}
type LInsert struct {
	Key            []byte
	Before         bool
	Pivot, Element []byte
}
type LPop struct{ Key []byte }
type LPush struct {
	Key      []byte
	Elements [][]byte
}
type LPushX struct {
	Key      []byte
	Elements [][]byte
}
type LRem struct {
	Key     []byte
	Count   int64
	Element []byte
}
type LSet struct {
	Key     []byte
	Index   int64
	Element []byte
}
type LTrim struct {
	Key         []byte
	Start, Stop int64
}
type Move struct {
	Key []byte
	DB  int64
}
type KV struct{ Key, Value []byte }
type MSet struct{ Pairs []KV }
type MSetNX struct{ Pairs []KV }
type Multi struct{}
type Persist struct{ Key []byte }
type PExpire struct {
	Key          []byte
	Milliseconds int64
}
type PExpireAt struct {
	Key               []byte
	MillisecondsAtUTC int64
}
type PFAdd struct {
	Key      []byte
	Elements [][]byte
}
type PFCount struct{ Keys [][]byte }
type PFMerge struct {
	DestKey    []byte
	SourceKeys [][]byte
}
type PSetEX struct {
	Key          []byte
	Milliseconds int64
	Value        []byte
}
type Publish struct{ Channel, Message []byte }
type Rename struct{ Key, NewKey []byte }
type RenameNX struct{ Key, NewKey []byte }
type Restore struct {
	Key      []byte
	TTL      int64
	Value    []byte
	Replace  bool
	AbsTTL   bool
	IdleTime *int64
	Freq     *int64
}
type RPop struct{ Key []byte }
type RPopLPush struct{ Source, Destination []byte }
type RPush struct {
	Key      []byte
	Elements [][]byte
}
type RPushX struct {
	Key      []byte
	Elements [][]byte
}
type SAdd struct {
	Key     []byte
	Members [][]byte
}
type ScriptFlush struct{}
type ScriptLoad struct{ Script []byte }
type SDiffStore struct {
	Destination []byte
	Keys        [][]byte
}
type Set struct {
	Key, Value []byte
	Expire     *SetExpireOption
	Exist      SetExistKind
	KeepTTL    bool
}
type SetExpireOption struct {
	Kind  SetExpireKind
	Value []byte
}
type SetBit struct {
	Key    []byte
	Offset int64
	Value  int64
}
type SetEX struct {
	Key     []byte
	Seconds int64
	Value   []byte
}
type SetNX struct{ Key, Value []byte }
type Select struct{ DB int64 }
type SetRange struct {
	Key    []byte
	Offset int64
	Value  []byte
}
type SInterStore struct {
	Destination []byte
	Keys        [][]byte
}
type SMove struct{ Source, Destination, Member []byte }
type SortLimit struct{ Offset, Count int64 }
type Sort struct {
	Key         []byte
	ByPattern   []byte
	Limit       *SortLimit
	GetPatterns [][]byte
	Desc        bool
	HasOrder    bool
	Alpha       bool
	Store       []byte
}
type SRem struct {
	Key     []byte
	Members [][]byte
}
type SUnionStore struct {
	Destination []byte
	Keys        [][]byte
}
type SwapDB struct{ Index1, Index2 int64 }
type Unlink struct{ Keys [][]byte }

type ZAggregate int

const (
	ZAggregateNone ZAggregate = iota
	ZAggregateSum
	ZAggregateMin
	ZAggregateMax
)

type ZAdd struct {
	Key   []byte
	Exist SetExistKind
	CH    bool
	Incr  bool
	Items []ZItem
}
type ZIncrBy struct {
	Key       []byte
	Increment float64
	Member    []byte
}
type ZInterStore struct {
	Destination []byte
	NumKeys     int64
	Keys        [][]byte
	Weights     []float64
	Aggregate   ZAggregate
}
type ZPopMax struct {
	Key   []byte
	Count *int64
}
type ZPopMin struct {
	Key   []byte
	Count *int64
}
type ZRem struct {
	Key     []byte
	Members [][]byte
}
type ZRemRangeByLex struct{ Key, Min, Max []byte }
type ZRemRangeByRank struct {
	Key         []byte
	Start, Stop int64
}
type ZRemRangeByScore struct{ Key, Min, Max []byte }
type ZUnionStore struct {
	Destination []byte
	NumKeys     int64
	Keys        [][]byte
	Weights     []float64
	Aggregate   ZAggregate
}

// Other is a free-form protocol verb the decoder passes through opaquely.
type Other struct {
	Name string
	Args [][]byte
}

// XGroupCreate / XGroupSetID / XGroupDestroy / XGroupDelConsumer are the
// XGROUP subcommands; exactly one is set on a given XGroup command.
type XGroupCreate struct {
	Key       []byte
	GroupName []byte
	ID        string
}
type XGroupSetID struct {
	Key       []byte
	GroupName []byte
	ID        string
}
type XGroupDestroy struct {
	Key       []byte
	GroupName []byte
}
type XGroupDelConsumer struct {
	Key          []byte
	GroupName    []byte
	ConsumerName []byte
}

type XAck struct {
	Key   []byte
	Group []byte
	IDs   []string
}
type XAdd struct {
	Key    []byte
	ID     string
	Fields []HashField
}
type XClaim struct {
	Key         []byte
	Group       []byte
	Consumer    []byte
	MinIdleTime int64
	IDs         []string
	Idle        *int64
	Time        *int64
	RetryCount  *int64
	Force       bool
	JustID      bool
}
type XDel struct {
	Key []byte
	IDs []string
}
type XGroup struct {
	Create      *XGroupCreate
	SetID       *XGroupSetID
	Destroy     *XGroupDestroy
	DelConsumer *XGroupDelConsumer
}
type XTrim struct {
	Key           []byte
	Count         int64
	Approximation bool
}

func (c *Append) CommandName() string           { return "APPEND" }
func (c *Bitfield) CommandName() string         { return "BITFIELD" }
func (c *BitOp) CommandName() string            { return "BITOP" }
func (c *BrPopLPush) CommandName() string       { return "BRPOPLPUSH" }
func (c *Decr) CommandName() string             { return "DECR" }
func (c *DecrBy) CommandName() string           { return "DECRBY" }
func (c *Del) CommandName() string              { return "DEL" }
func (c *Eval) CommandName() string             { return "EVAL" }
func (c *EvalSha) CommandName() string          { return "EVALSHA" }
func (c *Expire) CommandName() string           { return "EXPIRE" }
func (c *ExpireAt) CommandName() string         { return "EXPIREAT" }
func (c *Exec) CommandName() string             { return "EXEC" }
func (c *FlushAll) CommandName() string         { return "FLUSHALL" }
func (c *FlushDB) CommandName() string          { return "FLUSHDB" }
func (c *GetSet) CommandName() string           { return "GETSET" }
func (c *HDel) CommandName() string             { return "HDEL" }
func (c *HIncrBy) CommandName() string          { return "HINCRBY" }
func (c *HMSet) CommandName() string            { return "HMSET" }
func (c *HSet) CommandName() string             { return "HSET" }
func (c *HSetNX) CommandName() string           { return "HSETNX" }
func (c *Incr) CommandName() string             { return "INCR" }
func (c *IncrBy) CommandName() string           { return "INCRBY" }
func (c *LInsert) CommandName() string          { return "LINSERT" }
func (c *LPop) CommandName() string             { return "LPOP" }
func (c *LPush) CommandName() string            { return "LPUSH" }
func (c *LPushX) CommandName() string           { return "LPUSHX" }
func (c *LRem) CommandName() string             { return "LREM" }
func (c *LSet) CommandName() string             { return "LSET" }
func (c *LTrim) CommandName() string            { return "LTRIM" }
func (c *Move) CommandName() string             { return "MOVE" }
func (c *MSet) CommandName() string             { return "MSET" }
func (c *MSetNX) CommandName() string           { return "MSETNX" }
func (c *Multi) CommandName() string            { return "MULTI" }
func (c *Persist) CommandName() string          { return "PERSIST" }
func (c *PExpire) CommandName() string          { return "PEXPIRE" }
func (c *PExpireAt) CommandName() string        { return "PEXPIREAT" }
func (c *PFAdd) CommandName() string            { return "PFADD" }
func (c *PFCount) CommandName() string          { return "PFCOUNT" }
func (c *PFMerge) CommandName() string          { return "PFMERGE" }
func (c *PSetEX) CommandName() string           { return "PSETEX" }
func (c *Publish) CommandName() string          { return "PUBLISH" }
func (c *Rename) CommandName() string           { return "RENAME" }
func (c *RenameNX) CommandName() string         { return "RENAMENX" }
func (c *Restore) CommandName() string          { return "RESTORE" }
func (c *RPop) CommandName() string             { return "RPOP" }
func (c *RPopLPush) CommandName() string        { return "RPOPLPUSH" }
func (c *RPush) CommandName() string            { return "RPUSH" }
func (c *RPushX) CommandName() string           { return "RPUSHX" }
func (c *SAdd) CommandName() string             { return "SADD" }
func (c *ScriptFlush) CommandName() string      { return "SCRIPT FLUSH" }
func (c *ScriptLoad) CommandName() string       { return "SCRIPT LOAD" }
func (c *SDiffStore) CommandName() string       { return "SDIFFSTORE" }
func (c *Set) CommandName() string              { return "SET" }
func (c *SetBit) CommandName() string           { return "SETBIT" }
func (c *SetEX) CommandName() string            { return "SETEX" }
func (c *SetNX) CommandName() string            { return "SETNX" }
func (c *Select) CommandName() string           { return "SELECT" }
func (c *SetRange) CommandName() string         { return "SETRANGE" }
func (c *SInterStore) CommandName() string      { return "SINTERSTORE" }
func (c *SMove) CommandName() string            { return "SMOVE" }
func (c *Sort) CommandName() string             { return "SORT" }
func (c *SRem) CommandName() string             { return "SREM" }
func (c *SUnionStore) CommandName() string      { return "SUNIONSTORE" }
func (c *SwapDB) CommandName() string           { return "SWAPDB" }
func (c *Unlink) CommandName() string           { return "UNLINK" }
func (c *ZAdd) CommandName() string             { return "ZADD" }
func (c *ZIncrBy) CommandName() string          { return "ZINCRBY" }
func (c *ZInterStore) CommandName() string      { return "ZINTERSTORE" }
func (c *ZPopMax) CommandName() string          { return "ZPOPMAX" }
func (c *ZPopMin) CommandName() string          { return "ZPOPMIN" }
func (c *ZRem) CommandName() string             { return "ZREM" }
func (c *ZRemRangeByLex) CommandName() string   { return "ZREMRANGEBYLEX" }
func (c *ZRemRangeByRank) CommandName() string  { return "ZREMRANGEBYRANK" }
func (c *ZRemRangeByScore) CommandName() string { return "ZREMRANGEBYSCORE" }
func (c *ZUnionStore) CommandName() string      { return "ZUNIONSTORE" }
func (c *Other) CommandName() string            { return c.Name }
func (c *XAck) CommandName() string             { return "XACK" }
func (c *XAdd) CommandName() string             { return "XADD" }
func (c *XClaim) CommandName() string           { return "XCLAIM" }
func (c *XDel) CommandName() string             { return "XDEL" }
func (c *XGroup) CommandName() string           { return "XGROUP" }
func (c *XTrim) CommandName() string            { return "XTRIM" }
