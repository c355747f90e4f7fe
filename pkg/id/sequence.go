package id

import "encoding/json"

// Sequence hands out monotonically increasing identifiers starting at 1.
// It is persisted with the aggregate so ids never repeat across restarts.
// The zero value is ready to use. Not safe for concurrent use on its own;
// callers serialize access through the store's unit of work.
type Sequence struct {
	last int64
}

// Next returns the next identifier.
func (s *Sequence) Next() int64 {
	s.last++
	return s.last
}

// Last returns the most recently issued identifier, or 0.
func (s *Sequence) Last() int64 { return s.last }

// Observe moves the sequence past v, so ids loaded from older snapshots are never reissued.
func (s *Sequence) Observe(v int64) {
	if v > s.last {
		s.last = v
	}
}

func (s Sequence) MarshalJSON() ([]byte, error) { return json.Marshal(s.last) }

func (s *Sequence) UnmarshalJSON(b []byte) error {
	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	s.last = v
	return nil
}
