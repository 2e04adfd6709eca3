package succinctmsa

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// SuccinctColumn is one column of a multiple sequence alignment encoded as a
// SparseBitVector of run-head markers plus the packed run-head symbols
// themselves, in row order. It is immutable once built; all operations are
// pure and read-only.
type SuccinctColumn struct {
	bits  *SparseBitVector
	heads []byte
}

// newSuccinctColumn wraps a completed BitVector/heads pair produced by
// ColumnBuilder into an immutable SuccinctColumn, converting the mutable
// BitVector into its compressed SparseBitVector form.
func newSuccinctColumn(bits *BitVector, heads []byte) *SuccinctColumn {
	return &SuccinctColumn{
		bits:  NewSparseBitVector(bits),
		heads: heads,
	}
}

// Len returns S, the number of rows represented by this column.
func (c *SuccinctColumn) Len() int {
	return c.bits.Len()
}

// Runs returns the number of maximal runs of equal symbols in the column,
// equal to len(heads) and to the number of 1-bits in the underlying vector.
func (c *SuccinctColumn) Runs() int {
	return len(c.heads)
}

// Get returns the symbol at the given row. row must be in [0, S).
//
// The last row is a fast path returning the final run-head directly, since
// it is always the head of the last (possibly singleton) run. Every other
// row is decoded via the rank1 formula: heads[rank1(bits, row+1) - 1].
func (c *SuccinctColumn) Get(row int) (byte, error) {
	s := c.bits.Len()
	if row < 0 || row >= s {
		return 0, fmt.Errorf("%w: row %d not in [0,%d)", ErrIndexOutOfRange, row, s)
	}
	if row == s-1 {
		return c.heads[len(c.heads)-1], nil
	}
	idx := c.bits.Rank1(row+1) - 1
	return c.heads[idx], nil
}

// Frequency returns, for each distinct symbol appearing in the column, the
// fraction of rows carrying it, rounded to decimals fractional digits. The
// returned slice preserves insertion order of each symbol's first
// occurrence, matching the deterministic iteration order named in the
// design. Computed in one linear pass over the underlying bit vector: walk
// its one-bit positions in order, and between consecutive one-bits (or from
// the last one-bit to S) attribute every row in that run to the run's head
// symbol.
func (c *SuccinctColumn) Frequency(decimals int) []SymbolFrequency {
	s := c.bits.Len()
	if s == 0 {
		return nil
	}
	counts := make(map[byte]int)
	order := make([]byte, 0, len(c.heads))

	runStart := -1
	k := -1
	record := func(head byte, runLen int) {
		if runLen <= 0 {
			return
		}
		if _, seen := counts[head]; !seen {
			order = append(order, head)
		}
		counts[head] += runLen
	}

	c.bits.Iter(func(pos int) bool {
		if runStart >= 0 {
			record(c.heads[k], pos-runStart)
		}
		k++
		runStart = pos
		return true
	})
	record(c.heads[k], s-runStart)

	scale := pow10(decimals)
	out := make([]SymbolFrequency, 0, len(order))
	for _, sym := range order {
		frac := roundFraction(float64(counts[sym])/float64(s), scale)
		out = append(out, SymbolFrequency{Symbol: sym, Fraction: frac})
	}
	return out
}

// SymbolFrequency pairs a single alphabet symbol with its fraction of rows
// in a column.
type SymbolFrequency struct {
	Symbol   byte
	Fraction float64
}

func pow10(decimals int) float64 {
	result := 1.0
	for i := 0; i < decimals; i++ {
		result *= 10
	}
	return result
}

func roundFraction(v, scale float64) float64 {
	if scale <= 0 {
		return v
	}
	scaled := v*scale + 0.5
	return float64(int64(scaled)) / scale
}

// SizeInBytes returns the serialized footprint of the column: the
// underlying bit vector's footprint plus the raw byte length of heads.
func (c *SuccinctColumn) SizeInBytes() int {
	return c.bits.SizeInBytes() + len(c.heads)
}

// columnFileNames returns the two sibling artifact paths for column index in
// dir, matching spec.md §6's on-disk layout: "<c>_column" and "<c>.txt".
func columnFileNames(dir string, index int) (bitsPath, headsPath string) {
	return filepath.Join(dir, fmt.Sprintf("%d_column", index)),
		filepath.Join(dir, fmt.Sprintf("%d.txt", index))
}

// Store persists the column as its two sibling artifacts under dir, named
// by index.
func (c *SuccinctColumn) Store(dir string, index int) error {
	bitsPath, headsPath := columnFileNames(dir, index)

	var buf bytes.Buffer
	if _, err := c.bits.WriteTo(&buf); err != nil {
		return fmt.Errorf("store column %d bits: %w", index, err)
	}
	if err := os.WriteFile(bitsPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: store column %d bits: %v", ErrPersistIO, index, err)
	}
	if err := os.WriteFile(headsPath, c.heads, 0o644); err != nil {
		return fmt.Errorf("%w: store column %d heads: %v", ErrPersistIO, index, err)
	}
	return nil
}

// LoadSuccinctColumn reads the two sibling artifacts for column index from
// dir and reconstructs a SuccinctColumn.
func LoadSuccinctColumn(dir string, index int) (*SuccinctColumn, error) {
	bitsPath, headsPath := columnFileNames(dir, index)

	bitsData, err := os.ReadFile(bitsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: load column %d bits: %v", ErrPersistIO, index, err)
	}
	heads, err := os.ReadFile(headsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: load column %d heads: %v", ErrPersistIO, index, err)
	}

	bits := &SparseBitVector{}
	if _, err := bits.ReadFrom(bytes.NewReader(bitsData)); err != nil {
		return nil, fmt.Errorf("load column %d bits: %w", index, err)
	}
	return &SuccinctColumn{bits: bits, heads: heads}, nil
}

// Bits exposes the underlying SparseBitVector read-only.
func (c *SuccinctColumn) Bits() *SparseBitVector {
	return c.bits
}

// Heads exposes the packed run-head bytes read-only.
func (c *SuccinctColumn) Heads() []byte {
	return c.heads
}

