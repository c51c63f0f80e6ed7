package deck

import (
	"math/rand"
	"testing"
)

func indexes(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = string(rune('a'+i%26)) + string(rune('0'+i/26))
	}
	return out
}

func TestShuffleKeepsEveryIndex(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pool := indexes(52)
	seen := make(map[string]bool, len(pool))
	for _, idx := range pool {
		seen[idx] = true
	}

	Shuffle(rng, pool)

	if len(pool) != 52 {
		t.Fatalf("shuffle changed pool size: got %d", len(pool))
	}
	for _, idx := range pool {
		if !seen[idx] {
			t.Fatalf("shuffle produced unknown index %q", idx)
		}
		delete(seen, idx)
	}
	if len(seen) != 0 {
		t.Fatalf("shuffle lost %d indexes", len(seen))
	}
}

func TestCut(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{name: "full deck", size: 40},
		{name: "small deck", size: 5},
		{name: "pair", size: 2},
		{name: "single", size: 1},
		{name: "empty", size: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(7))
			pool := indexes(tt.size)
			cut := Cut(rng, pool, 10)
			if len(cut) != tt.size {
				t.Fatalf("cut changed pool size: got %d want %d", len(cut), tt.size)
			}
			seen := make(map[string]bool, tt.size)
			for _, idx := range cut {
				seen[idx] = true
			}
			if len(seen) != tt.size {
				t.Fatalf("cut duplicated or dropped indexes: %d unique of %d", len(seen), tt.size)
			}
		})
	}
}

func TestPrepareCombinesGroups(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	a := []string{"a1", "a2", "a3"}
	b := []string{"b1", "b2"}

	pool := Prepare(rng, a, b)

	if len(pool) != 5 {
		t.Fatalf("got %d indexes, want 5", len(pool))
	}
	seen := make(map[string]bool)
	for _, idx := range pool {
		seen[idx] = true
	}
	for _, want := range []string{"a1", "a2", "a3", "b1", "b2"} {
		if !seen[want] {
			t.Errorf("prepared pool is missing %q", want)
		}
	}
}

func TestDrawN(t *testing.T) {
	tests := []struct {
		name      string
		pool      []string
		n         int
		wantDrawn []string
		wantRest  []string
	}{
		{
			name:      "draw from front",
			pool:      []string{"a", "b", "c", "d"},
			n:         2,
			wantDrawn: []string{"a", "b"},
			wantRest:  []string{"c", "d"},
		},
		{
			name:      "exhausted pool returns fewer",
			pool:      []string{"a"},
			n:         3,
			wantDrawn: []string{"a"},
			wantRest:  []string{},
		},
		{
			name:      "empty pool",
			pool:      nil,
			n:         1,
			wantDrawn: []string{},
			wantRest:  []string{},
		},
		{
			name:      "zero draw",
			pool:      []string{"a", "b"},
			n:         0,
			wantDrawn: []string{},
			wantRest:  []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drawn, rest := DrawN(tt.pool, tt.n)
			if len(drawn) != len(tt.wantDrawn) {
				t.Fatalf("drawn = %v, want %v", drawn, tt.wantDrawn)
			}
			for i := range drawn {
				if drawn[i] != tt.wantDrawn[i] {
					t.Fatalf("drawn = %v, want %v", drawn, tt.wantDrawn)
				}
			}
			if len(rest) != len(tt.wantRest) {
				t.Fatalf("rest = %v, want %v", rest, tt.wantRest)
			}
			for i := range rest {
				if rest[i] != tt.wantRest[i] {
					t.Fatalf("rest = %v, want %v", rest, tt.wantRest)
				}
			}
		})
	}
}

func TestDrawOne(t *testing.T) {
	idx, rest, ok := DrawOne([]string{"x", "y"})
	if !ok || idx != "x" || len(rest) != 1 || rest[0] != "y" {
		t.Fatalf("DrawOne = %q, %v, %v", idx, rest, ok)
	}

	_, _, ok = DrawOne(nil)
	if ok {
		t.Fatal("DrawOne on empty pool reported ok")
	}
}

func TestDrawsNeverOverlap(t *testing.T) {
	pool := indexes(100)
	seen := make(map[string]bool)
	for len(pool) > 0 {
		var drawn []string
		drawn, pool = DrawN(pool, 7)
		for _, idx := range drawn {
			if seen[idx] {
				t.Fatalf("index %q drawn twice", idx)
			}
			seen[idx] = true
		}
	}
	if len(seen) != 100 {
		t.Fatalf("drew %d unique indexes, want 100", len(seen))
	}
}
