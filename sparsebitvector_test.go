package succinctmsa

import (
	"bytes"
	"testing"
)

func fromPositions(n int, positions []int) *SparseBitVector {
	bv := NewBitVector(n)
	for _, p := range positions {
		bv.Set(p)
	}
	return NewSparseBitVector(bv)
}

func TestSparseBitVectorRank1Basic(t *testing.T) {
	// "ACG": every row starts a new run -> bits = 111
	sbv := fromPositions(3, []int{0, 1, 2})
	cases := []struct {
		i    int
		want int
	}{
		{0, 0}, {1, 1}, {2, 2}, {3, 3},
	}
	for _, c := range cases {
		if got := sbv.Rank1(c.i); got != c.want {
			t.Fatalf("Rank1(%d) = %d, want %d", c.i, got, c.want)
		}
	}
}

func TestSparseBitVectorRank1Runs(t *testing.T) {
	// "AACC": row0 starts run A, row2 starts run C -> bits = 1010
	sbv := fromPositions(4, []int{0, 2})
	cases := []struct {
		i    int
		want int
	}{
		{0, 0}, {1, 1}, {2, 1}, {3, 2}, {4, 2},
	}
	for _, c := range cases {
		if got := sbv.Rank1(c.i); got != c.want {
			t.Fatalf("Rank1(%d) = %d, want %d", c.i, got, c.want)
		}
	}
}

func TestSparseBitVectorGetMatchesPositions(t *testing.T) {
	positions := map[int]bool{0: true, 5: true, 6: true, 63: true, 64: true, 200: true}
	var list []int
	for p := range positions {
		list = append(list, p)
	}
	sbv := fromPositions(256, list)
	for i := 0; i < 256; i++ {
		if sbv.Get(i) != positions[i] {
			t.Fatalf("Get(%d) = %v, want %v", i, sbv.Get(i), positions[i])
		}
	}
}

func TestSparseBitVectorIterOrder(t *testing.T) {
	want := []int{1, 4, 9, 16, 25}
	sbv := fromPositions(30, want)
	var got []int
	sbv.Iter(func(p int) bool {
		got = append(got, p)
		return true
	})
	if len(got) != len(want) {
		t.Fatalf("Iter produced %d positions, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Iter()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestSparseBitVectorIterStopsEarly(t *testing.T) {
	sbv := fromPositions(100, []int{1, 2, 3, 4, 5})
	count := 0
	sbv.Iter(func(p int) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Fatalf("Iter visited %d positions after early stop, want 2", count)
	}
}

func TestSparseBitVectorRoundTrip(t *testing.T) {
	positions := make([]int, 0, 200)
	for i := 0; i < 2000; i += 7 {
		positions = append(positions, i)
	}
	original := fromPositions(2000, positions)

	data, err := original.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	var reloaded SparseBitVector
	if err := reloaded.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}

	if reloaded.Len() != original.Len() || reloaded.Ones() != original.Ones() {
		t.Fatalf("round-tripped vector shape mismatch: got (%d,%d), want (%d,%d)",
			reloaded.Len(), reloaded.Ones(), original.Len(), original.Ones())
	}
	for _, p := range positions {
		if !reloaded.Get(p) {
			t.Fatalf("round-tripped vector missing bit at %d", p)
		}
	}
	for i := 0; i < original.Len(); i += 13 {
		if original.Get(i) != reloaded.Get(i) {
			t.Fatalf("round-tripped vector disagrees at %d", i)
		}
	}
}

func TestSparseBitVectorWriteToDeterministic(t *testing.T) {
	sbv := fromPositions(500, []int{0, 10, 20, 300, 499})
	var buf1, buf2 bytes.Buffer
	if _, err := sbv.WriteTo(&buf1); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if _, err := sbv.WriteTo(&buf2); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if !bytes.Equal(buf1.Bytes(), buf2.Bytes()) {
		t.Fatal("WriteTo is not deterministic across calls")
	}
}

func TestSparseBitVectorEmpty(t *testing.T) {
	sbv := fromPositions(0, nil)
	if sbv.Len() != 0 || sbv.Ones() != 0 {
		t.Fatalf("empty vector shape = (%d,%d), want (0,0)", sbv.Len(), sbv.Ones())
	}
	if sbv.Rank1(0) != 0 {
		t.Fatalf("Rank1(0) on empty vector = %d, want 0", sbv.Rank1(0))
	}
}

func TestSparseBitVectorNoOnes(t *testing.T) {
	sbv := fromPositions(50, nil)
	if sbv.Rank1(50) != 0 {
		t.Fatalf("Rank1(50) = %d, want 0", sbv.Rank1(50))
	}
	for i := 0; i < 50; i++ {
		if sbv.Get(i) {
			t.Fatalf("Get(%d) = true, want false on all-zero vector", i)
		}
	}
}

func TestSparseBitVectorBadVersion(t *testing.T) {
	sbv := fromPositions(10, []int{0, 5})
	data, err := sbv.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	data[0] = 0xFF // corrupt version byte of the little-endian version word

	var reloaded SparseBitVector
	err = reloaded.UnmarshalBinary(data)
	if err == nil {
		t.Fatal("expected error on corrupted version")
	}
}
