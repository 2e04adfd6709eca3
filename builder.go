package succinctmsa

import "fmt"

// RowSource is a restartable, row-streaming source of equal-length symbol
// records, the shape the FASTA adapter (internal/fasta) exposes to the
// core. ColumnBuilder only ever calls Next in a single forward pass.
type RowSource interface {
	// Next returns the next row's full symbol slice and true, or a nil
	// slice and false once the source is exhausted. Returned slices must
	// remain valid until the next call to Next.
	Next() ([]byte, bool, error)
}

// NonCanonicalHandler is invoked once per symbol outside the canonical
// alphabet {A,C,G,T,U,N,-} when ColumnBuilder runs in lenient mode. It
// receives the absolute row and column index and the offending byte
// (already upper-cased). It is never invoked in strict mode, where a
// non-canonical symbol instead fails the batch with ErrSymbolNonCanonical.
type NonCanonicalHandler func(row, col int, symbol byte)

// BuildOptions configures a single ColumnBuilder pass.
type BuildOptions struct {
	// Strict, when true, turns SymbolNonCanonical into a fatal error
	// instead of a reported-but-tolerated condition.
	Strict bool
	// OnNonCanonical, if non-nil, is called for every non-canonical symbol
	// encountered in lenient mode.
	OnNonCanonical NonCanonicalHandler
}

// ColumnBuilder performs a single pass over a RowSource, building `width`
// consecutive columns starting at `position` into `width` SuccinctColumns.
// This is the batching strategy from the design: one row-stream pass
// amortizes across B columns instead of one pass per column, turning an
// O(L * total_bytes) naive construction into O(ceil(L/B) * total_bytes).
type ColumnBuilder struct {
	position int
	width    int
	opts     BuildOptions
}

// NewColumnBuilder returns a builder for the batch of `width` columns
// starting at `position`. Callers are expected to have already clamped
// width to min(B, L-position).
func NewColumnBuilder(position, width int, opts BuildOptions) *ColumnBuilder {
	return &ColumnBuilder{position: position, width: width, opts: opts}
}

// Build consumes src in a single forward pass and returns the `width`
// SuccinctColumns for this batch, in ascending column order. rows is the
// expected row count S, used to size the per-column BitVectors; a record
// count different from rows fails with ErrLengthMismatch, as does any
// consumed record shorter than position+width symbols.
func (b *ColumnBuilder) Build(src RowSource, rows int) ([]*SuccinctColumn, error) {
	bits := make([]*BitVector, b.width)
	heads := make([][]byte, b.width)
	prevSet := make([]bool, b.width)
	prev := make([]byte, b.width)
	for j := range bits {
		bits[j] = NewBitVector(rows)
	}

	row := 0
	for {
		record, ok, err := src.Next()
		if err != nil {
			return nil, fmt.Errorf("build batch at column %d: %w", b.position, err)
		}
		if !ok {
			break
		}
		if len(record) < b.position+b.width {
			return nil, fmt.Errorf("%w: row %d has length %d, need at least %d",
				ErrLengthMismatch, row, len(record), b.position+b.width)
		}
		if row >= rows {
			return nil, fmt.Errorf("%w: row stream produced more than %d rows", ErrLengthMismatch, rows)
		}

		for j := 0; j < b.width; j++ {
			x := upper(record[b.position+j])
			if !isCanonical(x) {
				if b.opts.Strict {
					return nil, fmt.Errorf("%w: row %d col %d symbol %q",
						ErrSymbolNonCanonical, row, b.position+j, x)
				}
				if b.opts.OnNonCanonical != nil {
					b.opts.OnNonCanonical(row, b.position+j, x)
				}
			}

			if !prevSet[j] || x != prev[j] {
				bits[j].Set(row)
				heads[j] = append(heads[j], x)
				prev[j] = x
				prevSet[j] = true
			}
		}
		row++
	}

	if row != rows {
		return nil, fmt.Errorf("%w: row stream produced %d rows, expected %d", ErrLengthMismatch, row, rows)
	}

	columns := make([]*SuccinctColumn, b.width)
	for j := 0; j < b.width; j++ {
		columns[j] = newSuccinctColumn(bits[j], heads[j])
	}
	return columns, nil
}

// upper ASCII-uppercases a single symbol byte; the alphabet is single-byte
// per spec.md §3, so this never needs to handle multi-byte sequences.
func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}
