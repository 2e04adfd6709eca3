package succinctmsa

import "testing"

func TestInvariantHeadsLengthEqualsOnes(t *testing.T) {
	rows := randomAlignmentRows(t, 60, 15)
	a, err := BuildAlignment(openRows(rows), BuildConfig{BatchWidth: 4})
	if err != nil {
		t.Fatalf("BuildAlignment: %v", err)
	}
	for col := 0; col < a.Cols(); col++ {
		heads, err := a.ColumnHeads(col)
		if err != nil {
			t.Fatalf("ColumnHeads(%d): %v", col, err)
		}
		bits, err := a.ColumnVector(col)
		if err != nil {
			t.Fatalf("ColumnVector(%d): %v", col, err)
		}
		if len(heads) != bits.Ones() {
			t.Fatalf("column %d: len(heads)=%d, Ones()=%d", col, len(heads), bits.Ones())
		}
	}
}

func TestInvariantFirstBitAlwaysSet(t *testing.T) {
	rows := randomAlignmentRows(t, 30, 10)
	a, err := BuildAlignment(openRows(rows), BuildConfig{BatchWidth: 3})
	if err != nil {
		t.Fatalf("BuildAlignment: %v", err)
	}
	for col := 0; col < a.Cols(); col++ {
		bits, err := a.ColumnVector(col)
		if err != nil {
			t.Fatalf("ColumnVector(%d): %v", col, err)
		}
		if !bits.Get(0) {
			t.Fatalf("column %d: bit 0 not set", col)
		}
	}
}

func TestInvariantFrequencySumsToOne(t *testing.T) {
	rows := randomAlignmentRows(t, 97, 12)
	a, err := BuildAlignment(openRows(rows), BuildConfig{BatchWidth: 5})
	if err != nil {
		t.Fatalf("BuildAlignment: %v", err)
	}
	for col := 0; col < a.Cols(); col++ {
		freqs, err := a.ColumnFrequency(col, 4)
		if err != nil {
			t.Fatalf("ColumnFrequency(%d): %v", col, err)
		}
		sum := 0.0
		for _, f := range freqs {
			sum += f.Fraction
		}
		if diff := sum - 1.0; diff > 0.01 || diff < -0.01 {
			t.Fatalf("column %d: frequencies sum to %v, want ~1.0", col, sum)
		}
	}
}

func TestInvariantSizeInBytesSumsColumns(t *testing.T) {
	rows := randomAlignmentRows(t, 50, 20)
	a, err := BuildAlignment(openRows(rows), BuildConfig{BatchWidth: 6})
	if err != nil {
		t.Fatalf("BuildAlignment: %v", err)
	}
	sum := 0
	for col := 0; col < a.Cols(); col++ {
		size, err := a.ColumnSizeInBytes(col)
		if err != nil {
			t.Fatalf("ColumnSizeInBytes(%d): %v", col, err)
		}
		sum += size
	}
	if got := a.SizeInBytes(); got != sum {
		t.Fatalf("SizeInBytes() = %d, want %d", got, sum)
	}
}

func TestInvariantCellMatchesSourceMatrix(t *testing.T) {
	rows := randomAlignmentRows(t, 25, 8)
	a, err := BuildAlignment(openRows(rows), BuildConfig{BatchWidth: 3})
	if err != nil {
		t.Fatalf("BuildAlignment: %v", err)
	}
	for r, row := range rows {
		for c := 0; c < len(row); c++ {
			got, err := a.Cell(r, c)
			if err != nil {
				t.Fatalf("Cell(%d,%d): %v", r, c, err)
			}
			if got != row[c] {
				t.Fatalf("Cell(%d,%d) = %q, want %q", r, c, got, row[c])
			}
		}
	}
}
