package random

import "sync"

// Sequence replays a fixed list of draws, cycling when exhausted.
// An empty Sequence always returns Fallback.
type Sequence struct {
	mu       sync.Mutex
	values   []float64
	pos      int
	Fallback float64
}

// NewSequence creates a scripted source.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

// Constant returns a source that always yields v.
func Constant(v float64) *Sequence {
	return &Sequence{Fallback: v}
}

// Float64 returns the next scripted draw.
func (s *Sequence) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.values) == 0 {
		return s.Fallback
	}
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v
}

// Drawn returns how many values have been consumed.
func (s *Sequence) Drawn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}
