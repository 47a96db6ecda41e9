// Package checkpoint persists the upstream replication id/offset between
// runs so the source can resume a partial sync instead of redelivering the
// whole snapshot.
package checkpoint

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DirName is the directory, under the base directory given to Open, holding
// one checkpoint file per source.
const DirName = ".copy-redis"

// Record is the persisted replication position for one source.
type Record struct {
	ReplicationID     string
	ReplicationOffset int64
}

// Unknown is the record a Supervisor seeds a fresh run with: an id the
// upstream client recognises as "no partial resume", forcing a full
// snapshot.
var Unknown = Record{ReplicationID: "?", ReplicationOffset: -1}

// Store resolves the checkpoint file path for a given source address and
// loads/saves its Record.
type Store struct {
	path string
}

// Open derives the checkpoint path from hostPort (e.g. "127.0.0.1:6379")
// under baseDir/DirName, creating the directory if needed.
func Open(baseDir, hostPort string) (*Store, error) {
	dir := filepath.Join(baseDir, DirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create checkpoint dir: %w", err)
	}
	name := strconv.FormatUint(stableHash(hostPort), 10)
	return &Store{path: filepath.Join(dir, name)}, nil
}

// Path returns the checkpoint file's full path.
func (s *Store) Path() string { return s.path }

// Load reads the checkpoint. A missing or malformed file is not an error to
// the caller's control flow — it returns Unknown so the Supervisor forces a
// full snapshot, and a nil error only when the file genuinely doesn't exist.
func (s *Store) Load() (Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Unknown, nil
		}
		return Unknown, err
	}
	rec, err := parse(string(data))
	if err != nil {
		return Unknown, err
	}
	return rec, nil
}

// Save persists rec, overwriting any prior checkpoint.
func (s *Store) Save(rec Record) error {
	line := rec.ReplicationID + "," + strconv.FormatInt(rec.ReplicationOffset, 10)
	return os.WriteFile(s.path, []byte(line), 0o644)
}

func parse(s string) (Record, error) {
	s = strings.TrimSpace(s)
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return Record{}, fmt.Errorf("malformed checkpoint: %q", s)
	}
	offset, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("malformed checkpoint offset: %w", err)
	}
	if parts[0] == "" {
		return Record{}, fmt.Errorf("malformed checkpoint: empty replication id")
	}
	return Record{ReplicationID: parts[0], ReplicationOffset: offset}, nil
}

// stableHash is an unsigned 64-bit hash of host:port. The exact algorithm
// is not spec'd the way the routing table's murmur hash is (it only needs
// to be stable across runs, not byte-compatible with a reference
// implementation), so the standard library's FNV-1a serves without pulling
// in a dependency for it.
func stableHash(hostPort string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(hostPort))
	return h.Sum64()
}
