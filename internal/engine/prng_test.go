package engine

import "testing"

func TestSeedDeterminism(t *testing.T) {
	a, _ := NewSeed("snap")
	b, _ := NewSeed("snap")
	if x, y := a.BoardStream(PuzzlePins).Intn(1000000), b.BoardStream(PuzzlePins).Intn(1000000); x != y {
		t.Fatalf("streams differ: %d vs %d", x, y)
	}
	if x, y := a.Stream("x").Uint64(), b.Stream("x").Uint64(); x != y {
		t.Fatalf("labelled streams differ: %d vs %d", x, y)
	}
}

func TestSeedForSessionDiffers(t *testing.T) {
	s, _ := NewSeed("snap")
	a := s.ForSession("one").Stream("x").Uint64()
	b := s.ForSession("two").Stream("x").Uint64()
	if a == b {
		t.Fatalf("sessions share a stream")
	}
	if s.ForSession("").Stream("x").Uint64() != s.Stream("x").Uint64() {
		t.Fatalf("empty session id should keep the root")
	}
}

func TestEmptySeedRejected(t *testing.T) {
	if _, err := NewSeed(""); err == nil {
		t.Fatalf("expected error")
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	s, _ := NewSeed("perm")
	p := []int{0, 1, 2, 3, 4, 5, 6}
	s.Stream("p").Shuffle(len(p), func(i, j int) { p[i], p[j] = p[j], p[i] })
	seen := map[int]bool{}
	for _, v := range p {
		if v < 0 || v >= 7 || seen[v] {
			t.Fatalf("not a permutation: %v", p)
		}
		seen[v] = true
	}
}

func TestIntnBounds(t *testing.T) {
	s, _ := NewSeed("bounds")
	st := s.Stream("b")
	for i := 0; i < 1000; i++ {
		if v := st.Intn(5); v < 0 || v >= 5 {
			t.Fatalf("out of range: %d", v)
		}
	}
	if st.Intn(0) != 0 {
		t.Fatalf("Intn(0) should be 0")
	}
	if f := st.Float64(); f < 0 || f >= 1 {
		t.Fatalf("float out of range: %v", f)
	}
}
