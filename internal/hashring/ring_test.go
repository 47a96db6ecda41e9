package hashring

import (
	"strconv"
	"testing"
)

func TestBuildEntryCount(t *testing.T) {
	r := Build([]string{"127.0.0.1:6380", "127.0.0.1:6381", "127.0.0.1:6382"})
	if r.Len() != 160*3 {
		t.Fatalf("Len() = %d, want %d", r.Len(), 160*3)
	}
}

func TestRemovingShardRemoves160Entries(t *testing.T) {
	full := Build([]string{"a:1", "b:1", "c:1"})
	reduced := Build([]string{"a:1", "b:1"})
	if full.Len()-reduced.Len() != 160 {
		t.Fatalf("difference = %d, want 160", full.Len()-reduced.Len())
	}
}

func TestRouteIsDeterministic(t *testing.T) {
	r := Build([]string{"a:1", "b:1", "c:1"})
	addr1, ok1 := r.Route([]byte("test_sharding"))
	addr2, ok2 := r.Route([]byte("test_sharding"))
	if !ok1 || !ok2 || addr1 != addr2 {
		t.Fatalf("Route not deterministic: %q/%v %q/%v", addr1, ok1, addr2, ok2)
	}
}

func TestRouteSingleShardAlwaysWins(t *testing.T) {
	r := Build([]string{"only:1"})
	for _, key := range []string{"a", "b", "zzz", ""} {
		addr, ok := r.Route([]byte(key))
		if !ok || addr != "only:1" {
			t.Fatalf("Route(%q) = %q, %v; want only:1, true", key, addr, ok)
		}
	}
}

func TestRouteWrapsAroundMaxHash(t *testing.T) {
	r := Build([]string{"a:1", "b:1", "c:1"})
	// a key whose hash is greater than every ring entry must wrap around to
	// the entry with the smallest hash, never return !ok.
	maxHash := r.entries[len(r.entries)-1].hash
	for i := 0; i < 1000000; i++ {
		key := []byte(strconv.Itoa(i))
		if murmurHash64A(key, Seed) <= maxHash {
			continue
		}
		addr, ok := r.Route(key)
		if !ok || addr != r.entries[0].address {
			t.Fatalf("Route(%q) = %q, %v; want %q, true", key, addr, ok, r.entries[0].address)
		}
		return
	}
	t.Fatal("no key found hashing above the ring's maximum entry")
}

func TestAddressesDistinct(t *testing.T) {
	r := Build([]string{"a:1", "a:1", "b:1"})
	addrs := r.Addresses()
	if len(addrs) != 2 {
		t.Fatalf("Addresses() = %v, want 2 distinct entries", addrs)
	}
}

func TestMurmurHash64AKnownVectorStability(t *testing.T) {
	// Not a cross-implementation vector (none ships in the pack); this locks
	// the algorithm's output against itself so refactors can't silently
	// change routing decisions.
	h1 := murmurHash64A([]byte("SHARD-0-NODE-0"), Seed)
	h2 := murmurHash64A([]byte("SHARD-0-NODE-0"), Seed)
	if h1 != h2 {
		t.Fatal("murmurHash64A not stable across calls")
	}
	if h1 != 0xbd32a55c5369ab7c {
		t.Fatalf("murmurHash64A(SHARD-0-NODE-0) = %#x, want 0xbd32a55c5369ab7c", h1)
	}
	if h1 == murmurHash64A([]byte("SHARD-0-NODE-1"), Seed) {
		t.Fatal("different vnode names collided")
	}
}
