package succinctmsa

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/axiomhq/succinctmsa/internal/manifest"
)

// defaultBatchWidth is B from spec.md §4.5/§9: large enough to amortize a
// FASTA pass across many columns, small enough to keep per-batch memory
// (B*S bits plus run heads) bounded.
const defaultBatchWidth = 1000

// AlignmentState tracks the lifecycle named in spec.md §4.5:
// EMPTY -> BUILDING -> READY -> (STORED or DROPPED). Only READY supports
// queries; Load enters READY directly.
type AlignmentState int

const (
	StateEmpty AlignmentState = iota
	StateBuilding
	StateReady
	StateStored
	StateDropped
)

func (s AlignmentState) String() string {
	switch s {
	case StateEmpty:
		return "EMPTY"
	case StateBuilding:
		return "BUILDING"
	case StateReady:
		return "READY"
	case StateStored:
		return "STORED"
	case StateDropped:
		return "DROPPED"
	default:
		return "UNKNOWN"
	}
}

// SuccinctAlignment is the top-level container: an ordered sequence of L
// SuccinctColumns plus the pair (S, L). It owns its column array
// exclusively; each column owns its own storage. Immutable once READY.
type SuccinctAlignment struct {
	rows    int
	cols    int
	columns []*SuccinctColumn
	state   AlignmentState

	log zerolog.Logger
}

// OpenFunc produces a fresh, independent RowSource over the same underlying
// input each time it is called, so ColumnBuilder can reopen the stream once
// per batch as spec.md §4.5 requires. The FASTA/gzip adapter
// (internal/fasta) is the only collaborator expected to implement this.
type OpenFunc func() (RowSource, error)

// BuildConfig configures SuccinctAlignment construction.
type BuildConfig struct {
	// BatchWidth is B, the number of columns built per pass. Defaults to
	// defaultBatchWidth (1000) when <= 0.
	BatchWidth int
	Options    BuildOptions
	// Logger receives batch-progress events. The zero value is a no-op
	// logger (io.Discard), matching the corpus convention that library
	// cores stay silent unless a logger is explicitly supplied.
	Logger zerolog.Logger
}

// PrePass opens src once and scans every record to determine S (row count)
// and L (column count, the length of the first record), validating that
// every subsequent record has exactly length L. This is spec.md §4.5's "one
// pre-pass... to determine S and L and to verify that every record has
// length L", implemented directly against RowSource so it has no FASTA-
// specific knowledge.
func PrePass(open OpenFunc) (rows, cols int, err error) {
	src, err := open()
	if err != nil {
		return 0, 0, fmt.Errorf("prepass open: %w: %w", ErrPersistIO, err)
	}

	for {
		record, ok, nextErr := src.Next()
		if nextErr != nil {
			return 0, 0, fmt.Errorf("prepass: %w", nextErr)
		}
		if !ok {
			break
		}
		if rows == 0 {
			cols = len(record)
		} else if len(record) != cols {
			return 0, 0, fmt.Errorf("%w: row %d has length %d, expected %d",
				ErrLengthMismatch, rows, len(record), cols)
		}
		rows++
	}
	return rows, cols, nil
}

// BuildAlignment performs the full batched construction described in
// spec.md §4.5: a pre-pass to determine (S, L), then for each batch
// position 0, B, 2B, ... < L, reopening the stream and invoking
// ColumnBuilder, appending the emitted columns in ascending order. No
// on-disk artifacts are produced; Store must be called explicitly.
func BuildAlignment(open OpenFunc, cfg BuildConfig) (*SuccinctAlignment, error) {
	batchWidth := cfg.BatchWidth
	if batchWidth <= 0 {
		batchWidth = defaultBatchWidth
	}

	a := &SuccinctAlignment{state: StateBuilding, log: cfg.Logger}

	rows, cols, err := PrePass(open)
	if err != nil {
		a.state = StateDropped
		return nil, err
	}
	a.rows, a.cols = rows, cols
	a.columns = make([]*SuccinctColumn, 0, cols)

	a.log.Info().Int("rows", rows).Int("cols", cols).Int("batch_width", batchWidth).Msg("prepass complete")

	for position := 0; position < cols; position += batchWidth {
		width := batchWidth
		if position+width > cols {
			width = cols - position
		}

		src, err := open()
		if err != nil {
			a.state = StateDropped
			return nil, fmt.Errorf("reopen for batch at %d: %w: %w", position, ErrPersistIO, err)
		}

		builder := NewColumnBuilder(position, width, cfg.Options)
		batch, err := builder.Build(src, rows)
		if err != nil {
			a.state = StateDropped
			return nil, err
		}
		a.columns = append(a.columns, batch...)
		a.log.Debug().Int("position", position).Int("width", width).Msg("batch built")
	}

	a.state = StateReady
	return a, nil
}

func (a *SuccinctAlignment) requireReady() error {
	if a.state != StateReady {
		return fmt.Errorf("%w: state is %s", ErrNotReady, a.state)
	}
	return nil
}

// Len returns L, the number of columns.
func (a *SuccinctAlignment) Len() int { return a.cols }

// Rows returns S, the number of sequences.
func (a *SuccinctAlignment) Rows() int { return a.rows }

// Cols returns L, the number of columns.
func (a *SuccinctAlignment) Cols() int { return a.cols }

// Info returns (L, S) as named in spec.md §4.5.
func (a *SuccinctAlignment) Info() (length, size int) { return a.cols, a.rows }

// State reports the alignment's current lifecycle state.
func (a *SuccinctAlignment) State() AlignmentState { return a.state }

// Cell returns the symbol at (row, col).
func (a *SuccinctAlignment) Cell(row, col int) (byte, error) {
	if err := a.requireReady(); err != nil {
		return 0, err
	}
	if col < 0 || col >= a.cols {
		return 0, fmt.Errorf("%w: col %d not in [0,%d)", ErrIndexOutOfRange, col, a.cols)
	}
	return a.columns[col].Get(row)
}

// Row returns the full symbol sequence of the given row by concatenating
// Cell(row, c) across every column. O(L) with one rank1 per column.
func (a *SuccinctAlignment) Row(row int) (string, error) {
	if err := a.requireReady(); err != nil {
		return "", err
	}
	if row < 0 || row >= a.rows {
		return "", fmt.Errorf("%w: row %d not in [0,%d)", ErrIndexOutOfRange, row, a.rows)
	}
	out := make([]byte, a.cols)
	for c := 0; c < a.cols; c++ {
		sym, err := a.columns[c].Get(row)
		if err != nil {
			return "", err
		}
		out[c] = sym
	}
	return string(out), nil
}

// ColumnFrequency returns the per-symbol row fraction for the given column,
// rounded to decimals fractional digits. See SuccinctColumn.Frequency.
func (a *SuccinctAlignment) ColumnFrequency(col, decimals int) ([]SymbolFrequency, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	if col < 0 || col >= a.cols {
		return nil, fmt.Errorf("%w: col %d not in [0,%d)", ErrIndexOutOfRange, col, a.cols)
	}
	return a.columns[col].Frequency(decimals), nil
}

// ColumnVector exposes the SparseBitVector of the given column, read-only.
func (a *SuccinctAlignment) ColumnVector(col int) (*SparseBitVector, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	if col < 0 || col >= a.cols {
		return nil, fmt.Errorf("%w: col %d not in [0,%d)", ErrIndexOutOfRange, col, a.cols)
	}
	return a.columns[col].Bits(), nil
}

// ColumnHeads exposes the heads byte string of the given column, read-only.
func (a *SuccinctAlignment) ColumnHeads(col int) ([]byte, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	if col < 0 || col >= a.cols {
		return nil, fmt.Errorf("%w: col %d not in [0,%d)", ErrIndexOutOfRange, col, a.cols)
	}
	return a.columns[col].Heads(), nil
}

// ColumnSizeInBytes returns the serialized footprint of a single column.
func (a *SuccinctAlignment) ColumnSizeInBytes(col int) (int, error) {
	if err := a.requireReady(); err != nil {
		return 0, err
	}
	if col < 0 || col >= a.cols {
		return 0, fmt.Errorf("%w: col %d not in [0,%d)", ErrIndexOutOfRange, col, a.cols)
	}
	return a.columns[col].SizeInBytes(), nil
}

// SizeInBytes returns the sum of every column's serialized footprint.
func (a *SuccinctAlignment) SizeInBytes() int {
	total := 0
	for _, c := range a.columns {
		total += c.SizeInBytes()
	}
	return total
}

// ColumnsOverMean returns the indices of columns whose size is at least
// factor times the mean column size. Purely diagnostic; per spec.md's Open
// Question resolution (see DESIGN.md) this returns only the index list, not
// the accumulated "excessive" byte total the original implementation left
// unused.
func (a *SuccinctAlignment) ColumnsOverMean(factor float64) []int {
	if len(a.columns) == 0 {
		return nil
	}
	mean := float64(a.SizeInBytes()) / float64(len(a.columns))
	threshold := factor * mean
	var out []int
	for i, c := range a.columns {
		if float64(c.SizeInBytes()) >= threshold {
			out = append(out, i)
		}
	}
	return out
}

// SizeToCSV writes one row per column — (column_index, size_bytes,
// cumulative_size) — to path.
//
// spec.md's Open Question on cumulative ordering is resolved by the
// cumulativeNaturalOrder parameter: when sort is true and
// cumulativeNaturalOrder is true, rows are emitted in ascending size order
// but cumulative_size accumulates in natural column order (computed once,
// independent of the sort); when cumulativeNaturalOrder is false (pass
// false when sort is also false; it is ignored when sort is false since
// natural order already means "whatever order rows are written"),
// cumulative_size accumulates in the same order the rows are written,
// matching the literal reading of spec.md §4.5.
func (a *SuccinctAlignment) SizeToCSV(path string, sort_ bool, cumulativeNaturalOrder bool) error {
	if err := a.requireReady(); err != nil {
		return err
	}

	type row struct {
		index int
		size  int
	}
	rows := make([]row, len(a.columns))
	naturalCumulative := make([]int, len(a.columns))
	running := 0
	for i, c := range a.columns {
		size := c.SizeInBytes()
		rows[i] = row{index: i, size: size}
		running += size
		naturalCumulative[i] = running
	}

	if sort_ {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].size < rows[j].size })
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: size_to_csv: %v", ErrPersistIO, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	if _, err := w.WriteString("column_index,size_bytes,cumulative_size\n"); err != nil {
		return fmt.Errorf("%w: size_to_csv: %v", ErrPersistIO, err)
	}

	cumulative := 0
	for _, r := range rows {
		if sort_ && cumulativeNaturalOrder {
			cumulative = naturalCumulative[r.index]
		} else {
			cumulative += r.size
		}
		line := fmt.Sprintf("%d,%d,%d\n", r.index, r.size, cumulative)
		if _, err := w.WriteString(line); err != nil {
			return fmt.Errorf("%w: size_to_csv: %v", ErrPersistIO, err)
		}
	}
	return nil
}

// Store persists the alignment under dir as info.txt plus one
// "<c>_column"/"<c>.txt" pair per column, matching spec.md §6's on-disk
// layout exactly, and additionally writes a manifest.yaml sidecar (build
// id, batch width, xxhash checksum) that Load never requires — the
// info.txt + per-column pairing alone is sufficient to reload.
func (a *SuccinctAlignment) Store(dir string, batchWidth int) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", ErrPersistIO, dir, err)
	}

	infoPath := filepath.Join(dir, "info.txt")
	info := fmt.Sprintf("%d,%d", a.rows, a.cols)
	if err := os.WriteFile(infoPath, []byte(info), 0o644); err != nil {
		return fmt.Errorf("%w: write info.txt: %v", ErrPersistIO, err)
	}

	hasher := xxhash.New()
	for i, c := range a.columns {
		if err := c.Store(dir, i); err != nil {
			return err
		}
		fmt.Fprintf(hasher, "%d:%d:%d;", i, c.Len(), c.SizeInBytes())
	}

	m := manifest.Manifest{
		BuildID:    uuid.NewString(),
		Rows:       a.rows,
		Cols:       a.cols,
		BatchWidth: batchWidth,
		Checksum:   hasher.Sum64(),
	}
	if err := manifest.Write(dir, m); err != nil {
		return fmt.Errorf("%w: write manifest: %v", ErrPersistIO, err)
	}

	a.state = StateStored
	return nil
}

// LoadAlignment reads an alignment previously persisted by Store from dir.
// Only info.txt and the per-column pairs are required; manifest.yaml, if
// present, is not consulted.
func LoadAlignment(dir string) (*SuccinctAlignment, error) {
	infoPath := filepath.Join(dir, "info.txt")
	raw, err := os.ReadFile(infoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read info.txt: %v", ErrPersistIO, err)
	}
	parts := strings.SplitN(strings.TrimSpace(string(raw)), ",", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: malformed info.txt %q", ErrFormatInvalid, string(raw))
	}
	rows, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: malformed info.txt rows: %v", ErrFormatInvalid, err)
	}
	cols, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: malformed info.txt cols: %v", ErrFormatInvalid, err)
	}

	columns := make([]*SuccinctColumn, cols)
	for i := 0; i < cols; i++ {
		col, err := LoadSuccinctColumn(dir, i)
		if err != nil {
			return nil, err
		}
		columns[i] = col
	}

	return &SuccinctAlignment{
		rows:    rows,
		cols:    cols,
		columns: columns,
		state:   StateReady,
	}, nil
}
