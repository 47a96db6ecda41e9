package convert

import (
	"testing"

	"github.com/jfoltran/copyredis/internal/request"
	"github.com/jfoltran/copyredis/internal/upstream"
)

func reqEqual(t *testing.T, got []request.Request, want ...request.Request) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d requests, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("request %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestConvertSnapshotString(t *testing.T) {
	c := New()
	got := c.ConvertSnapshot(&upstream.String{Key: []byte("k"), Value: []byte("v")})
	reqEqual(t, got, request.New("SET", "k", "v"))
}

func TestConvertSnapshotStringWithExpiry(t *testing.T) {
	c := New()
	got := c.ConvertSnapshot(&upstream.String{
		Key:   []byte("k"),
		Value: []byte("v"),
		Meta:  upstream.Metadata{Expiry: &upstream.Expiry{Kind: upstream.ExpireSeconds, At: 100}},
	})
	reqEqual(t, got, request.New("SET", "k", "v"), request.New("EXPIREAT", "k", "100"))
}

func TestConvertSnapshotStringWithMillisecondExpiry(t *testing.T) {
	c := New()
	got := c.ConvertSnapshot(&upstream.String{
		Key:   []byte("k"),
		Value: []byte("v"),
		Meta:  upstream.Metadata{Expiry: &upstream.Expiry{Kind: upstream.ExpireMilliseconds, At: 1234}},
	})
	reqEqual(t, got, request.New("SET", "k", "v"), request.New("PEXPIREAT", "k", "1234"))
}

func TestConvertSnapshotStream(t *testing.T) {
	c := New()
	got := c.ConvertSnapshot(&upstream.Stream{
		Key: []byte("s"),
		Entries: []upstream.StreamEntry{
			{ID: "1-1", Fields: []upstream.HashField{{Name: []byte("f"), Value: []byte("v")}}},
		},
		Groups: []upstream.StreamGroup{{Name: "g", LastID: "1-1"}},
	})
	reqEqual(t, got,
		request.New("XADD", "s", "1-1", "f", "v"),
		request.New("XGROUP", "CREATE", "s", "g", "1-1"),
	)
}

func TestConvertPExpireIncludesKey(t *testing.T) {
	c := New()
	got := c.ConvertMutation(&upstream.PExpire{Key: []byte("k"), Milliseconds: 5000})
	reqEqual(t, got, request.New("PEXPIRE", "k", "5000"))
}

func TestConvertPExpireAtIncludesKey(t *testing.T) {
	c := New()
	got := c.ConvertMutation(&upstream.PExpireAt{Key: []byte("k"), MillisecondsAtUTC: 999})
	reqEqual(t, got, request.New("PEXPIREAT", "k", "999"))
}

func TestConvertZUnionStoreSingleDestination(t *testing.T) {
	c := New()
	got := c.ConvertMutation(&upstream.ZUnionStore{
		Destination: []byte("dest"),
		NumKeys:     2,
		Keys:        [][]byte{[]byte("a"), []byte("b")},
	})
	reqEqual(t, got, request.New("ZUNIONSTORE", "dest", "2", "a", "b"))
}

func TestConvertSetOptionOrdering(t *testing.T) {
	c := New()
	got := c.ConvertMutation(&upstream.Set{
		Key:   []byte("k"),
		Value: []byte("v"),
		Expire: &upstream.SetExpireOption{
			Kind:  upstream.SetExpireEX,
			Value: []byte("60"),
		},
		Exist:   upstream.SetExistNX,
		KeepTTL: false,
	})
	reqEqual(t, got, request.New("SET", "k", "v", "EX", "60", "NX"))
}

func TestConvertZAddOptionOrdering(t *testing.T) {
	c := New()
	got := c.ConvertMutation(&upstream.ZAdd{
		Key:   []byte("k"),
		Exist: upstream.SetExistXX,
		CH:    true,
		Incr:  false,
		Items: []upstream.ZItem{{Score: 1, Member: []byte("m")}},
	})
	reqEqual(t, got, request.New("ZADD", "k", "XX", "CH", "1", "m"))
}

func TestConvertRestoreOrdering(t *testing.T) {
	c := New()
	idle := int64(10)
	got := c.ConvertMutation(&upstream.Restore{
		Key:      []byte("k"),
		TTL:      0,
		Value:    []byte("dump"),
		Replace:  true,
		AbsTTL:   true,
		IdleTime: &idle,
	})
	reqEqual(t, got, request.New("RESTORE", "k", "0", "dump", "REPLACE", "ABSTTL", "IDLETIME", "10"))
}

func TestConvertBitOpOperatorBeforeDest(t *testing.T) {
	c := New()
	got := c.ConvertMutation(&upstream.BitOp{
		Op:      "AND",
		DestKey: []byte("dest"),
		Keys:    [][]byte{[]byte("a"), []byte("b")},
	})
	reqEqual(t, got, request.New("BITOP", "AND", "dest", "a", "b"))
}

func TestConvertLInsertPositionBeforePivot(t *testing.T) {
	c := New()
	got := c.ConvertMutation(&upstream.LInsert{
		Key: []byte("k"), Before: true,
		Pivot: []byte("p"), Element: []byte("e"),
	})
	reqEqual(t, got, request.New("LINSERT", "k", "BEFORE", "p", "e"))
}

func TestConvertXTrimApproximationBeforeCount(t *testing.T) {
	c := New()
	got := c.ConvertMutation(&upstream.XTrim{Key: []byte("k"), Count: 100, Approximation: true})
	reqEqual(t, got, request.New("XTRIM", "k", "MAXLEN", "~", "100"))
}

func TestConvertOtherPassthrough(t *testing.T) {
	c := New()
	got := c.ConvertMutation(&upstream.Other{Name: "OBJECT", Args: [][]byte{[]byte("ENCODING"), []byte("k")}})
	reqEqual(t, got, request.New("OBJECT", "ENCODING", "k"))
}

func TestDroppedVerbs(t *testing.T) {
	for _, cmd := range []upstream.Command{
		&upstream.BitOp{}, &upstream.Eval{}, &upstream.EvalSha{},
		&upstream.Multi{}, &upstream.Exec{}, &upstream.PFMerge{},
		&upstream.SDiffStore{}, &upstream.SInterStore{}, &upstream.SUnionStore{},
		&upstream.ZUnionStore{}, &upstream.ZInterStore{}, &upstream.Publish{},
	} {
		if !IsDropped(cmd) {
			t.Errorf("%s: expected dropped", cmd.CommandName())
		}
	}
	if IsDropped(&upstream.Set{}) {
		t.Errorf("SET should not be dropped")
	}
}

func TestExpandDel(t *testing.T) {
	out, ok := Expand(&upstream.Del{Keys: [][]byte{[]byte("a"), []byte("b"), []byte("c")}})
	if !ok || len(out) != 3 {
		t.Fatalf("expected 3 expanded DELs, got %d ok=%v", len(out), ok)
	}
	for i, k := range []string{"a", "b", "c"} {
		if string(out[i].Key) != k {
			t.Errorf("expanded[%d].Key = %q, want %q", i, out[i].Key, k)
		}
		if !out[i].Request.Equal(request.New("DEL", k)) {
			t.Errorf("expanded[%d].Request = %+v", i, out[i].Request)
		}
	}
}

func TestExpandMSetPerPair(t *testing.T) {
	out, ok := Expand(&upstream.MSet{Pairs: []upstream.KV{
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("b"), Value: []byte("2")},
	}})
	if !ok {
		t.Fatal("expected ok")
	}
	reqEqual(t, []request.Request{out[0].Request, out[1].Request},
		request.New("SET", "a", "1"), request.New("SET", "b", "2"))
}

func TestExpandNotApplicable(t *testing.T) {
	if _, ok := Expand(&upstream.Set{}); ok {
		t.Fatal("SET is not an expandable command")
	}
}

func TestSelectDBExtractsTarget(t *testing.T) {
	db, ok := SelectDB(&upstream.Select{DB: 3})
	if !ok || db != 3 {
		t.Fatalf("got db=%d ok=%v, want 3 true", db, ok)
	}
}

func TestSelectDBFalseForOtherCommands(t *testing.T) {
	if _, ok := SelectDB(&upstream.Set{}); ok {
		t.Fatal("SET should not report as a Select command")
	}
}

func TestConvertMutationSelectProducesNoRequest(t *testing.T) {
	c := New()
	got := c.ConvertMutation(&upstream.Select{DB: 2})
	if len(got) != 0 {
		t.Fatalf("got %+v, want no canonical requests for SELECT", got)
	}
}

func TestBroadcastExcludesSelect(t *testing.T) {
	if Broadcast["SELECT"] {
		t.Fatal("SELECT must not be in the literal broadcast set; it is carried as a SwapDB message")
	}
}
