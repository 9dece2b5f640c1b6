package random

import (
	"testing"
)

func TestSeeded_Deterministic(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)

	for i := 0; i < 100; i++ {
		va, vb := a.Float64(), b.Float64()
		if va != vb {
			t.Fatalf("draw %d differs: %f != %f", i, va, vb)
		}
		if va < 0 || va >= 1 {
			t.Fatalf("draw %d out of range: %f", i, va)
		}
	}
}

func TestSeeded_Seed(t *testing.T) {
	if got := NewSeeded(-17).Seed(); got != -17 {
		t.Errorf("Seed() = %d, want -17", got)
	}
}

func TestIntRange(t *testing.T) {
	tests := []struct {
		name string
		draw float64
		lo   int
		hi   int
		want int
	}{
		{"zero draw", 0.0, 50, 150, 50},
		{"top draw", 0.999999, 50, 150, 150},
		{"exact one clamps", 1.0, 1, 5, 5},
		{"middle", 0.5, 1, 5, 3},
		{"degenerate range", 0.7, 4, 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IntRange(Constant(tt.draw), tt.lo, tt.hi)
			if got != tt.want {
				t.Errorf("IntRange(%f, %d, %d) = %d, want %d", tt.draw, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestSequence_Cycles(t *testing.T) {
	s := NewSequence(0.1, 0.2)

	got := []float64{s.Float64(), s.Float64(), s.Float64()}
	want := []float64{0.1, 0.2, 0.1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("draw %d = %f, want %f", i, got[i], want[i])
		}
	}
	if s.Drawn() != 3 {
		t.Errorf("Drawn() = %d, want 3", s.Drawn())
	}
}

func TestNewSeed(t *testing.T) {
	if _, err := NewSeed(); err != nil {
		t.Fatalf("NewSeed failed: %v", err)
	}
}
