// Package upstream defines the Snapshot Object / Command surface the
// replication client (an external collaborator — snapshot parser and
// streaming command decoder) hands to the converter. The decoder itself is
// out of scope; only the shapes it emits live here.
package upstream

// ExpireKind distinguishes second- and millisecond-resolution expirations
// as carried in a snapshot entity's metadata.
type ExpireKind int

const (
	ExpireNone ExpireKind = iota
	ExpireSeconds
	ExpireMilliseconds
)

// Expiry is an absolute expiration time paired with its resolution.
type Expiry struct {
	Kind ExpireKind
	At   int64
}

// Metadata is carried by every Snapshot Object: its logical database and an
// optional expiration.
type Metadata struct {
	DB     int
	Expiry *Expiry
}

// Object is a Snapshot Object: one entity from the initial dump. Only the
// variants the converter understands are declared; everything else the
// decoder may emit is dropped upstream of this package.
type Object interface {
	ObjectKey() []byte
	ObjectMeta() Metadata
}

// HashField is a field/value pair, shared by Hash snapshot objects and
// stream entries.
type HashField struct {
	Name  []byte
	Value []byte
}

// ZItem is one member of a SortedSet snapshot object.
type ZItem struct {
	Score  float64
	Member []byte
}

// StreamEntry is one record in a Stream snapshot object, in id order.
type StreamEntry struct {
	ID     string
	Fields []HashField
}

// StreamGroup is a consumer group attached to a Stream snapshot object.
type StreamGroup struct {
	Name   string
	LastID string
}

// String is a Snapshot Object carrying a single value.
type String struct {
	Key   []byte
	Meta  Metadata
	Value []byte
}

func (o *String) ObjectKey() []byte     { return o.Key }
func (o *String) ObjectMeta() Metadata  { return o.Meta }

// List is a Snapshot Object carrying values in insertion order.
type List struct {
	Key    []byte
	Meta   Metadata
	Values [][]byte
}

func (o *List) ObjectKey() []byte    { return o.Key }
func (o *List) ObjectMeta() Metadata { return o.Meta }

// SetObject is a Snapshot Object carrying unordered members.
type SetObject struct {
	Key     []byte
	Meta    Metadata
	Members [][]byte
}

func (o *SetObject) ObjectKey() []byte    { return o.Key }
func (o *SetObject) ObjectMeta() Metadata { return o.Meta }

// SortedSet is a Snapshot Object carrying score/member pairs in score order.
type SortedSet struct {
	Key   []byte
	Meta  Metadata
	Items []ZItem
}

func (o *SortedSet) ObjectKey() []byte    { return o.Key }
func (o *SortedSet) ObjectMeta() Metadata { return o.Meta }

// Hash is a Snapshot Object carrying field/value pairs.
type Hash struct {
	Key    []byte
	Meta   Metadata
	Fields []HashField
}

func (o *Hash) ObjectKey() []byte    { return o.Key }
func (o *Hash) ObjectMeta() Metadata { return o.Meta }

// Stream is a Snapshot Object carrying entries in id order plus consumer
// groups.
type Stream struct {
	Key     []byte
	Meta    Metadata
	Entries []StreamEntry
	Groups  []StreamGroup
}

func (o *Stream) ObjectKey() []byte    { return o.Key }
func (o *Stream) ObjectMeta() Metadata { return o.Meta }
