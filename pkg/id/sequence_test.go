package id

import (
	"encoding/json"
	"testing"
)

func TestSequence_MonotonicFromOne(t *testing.T) {
	var s Sequence
	const n = 200
	seen := make(map[int64]struct{}, n)
	prev := int64(0)
	for i := 0; i < n; i++ {
		v := s.Next()
		if v <= prev {
			t.Fatalf("id %d not greater than previous %d", v, prev)
		}
		if _, ok := seen[v]; ok {
			t.Fatalf("duplicate id after %d iterations: %d", i, v)
		}
		seen[v] = struct{}{}
		prev = v
	}
	if s.Last() != n {
		t.Fatalf("Last = %d, want %d", s.Last(), n)
	}
}

func TestSequence_JSONRoundTripKeepsPosition(t *testing.T) {
	var s Sequence
	s.Next()
	s.Next()

	b, err := json.Marshal(struct {
		Seq Sequence `json:"sequence"`
	}{s})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"sequence":2}` {
		t.Fatalf("json = %s", b)
	}

	var out struct {
		Seq Sequence `json:"sequence"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := out.Seq.Next(); got != 3 {
		t.Fatalf("Next after reload = %d, want 3", got)
	}
}

func TestSequence_Observe(t *testing.T) {
	var s Sequence
	s.Observe(41)
	if got := s.Next(); got != 42 {
		t.Fatalf("Next = %d, want 42", got)
	}
	s.Observe(10)
	if got := s.Next(); got != 43 {
		t.Fatalf("Observe must not move backwards, Next = %d", got)
	}
}
