// Package succinctmsa provides a column-oriented succinct encoding of a
// multiple sequence alignment (MSA): fixed-width rows of a fixed alphabet,
// one bit vector and one packed run-head array per column, supporting
// O(1)-ish random cell access without decompressing anything.
//
// # Overview
//
// A multiple sequence alignment is an S-by-L matrix of symbols where
// consecutive rows in a column very often repeat the same symbol (MSAs are
// conserved by construction). succinctmsa exploits that redundancy per
// column: instead of storing S bytes, it stores a sparse bit vector marking
// where each maximal run of equal symbols starts, plus one byte per run.
// Cell access becomes a single rank1 query against the column's bit vector.
//
// # When to Use succinctmsa
//
// succinctmsa is a good fit for:
//   - Large conserved alignments (thousands of sequences, thousands of
//     columns) where most columns have few distinct runs
//   - Workloads dominated by random single-cell or single-row reads rather
//     than bulk re-serialization
//   - Pipelines that build once from a FASTA stream and query many times
//
// # When NOT to Use succinctmsa
//
// succinctmsa is not suitable for:
//   - Alignments under active edit — there is no mutation or append-after-
//     build API, only full rebuild
//   - Highly divergent columns with few or no repeated runs, where the
//     run-head array approaches S bytes anyway
//   - Workloads needing select-1 (position of the k-th set bit); only
//     rank1 is exposed
//
// # Tradeoffs vs a Flat Matrix
//
// Compared to a plain []byte matrix:
//   - Much smaller footprint on conserved columns (bits + one byte per run
//     vs one byte per row)
//   - Slower single-cell reads (a rank1 binary search vs a flat index)
//   - Immutable once built; no in-place edits
//
// Compared to a general-purpose compressor (gzip, zstd) over the raw
// matrix:
//   - True random access to any cell without decompressing a block
//   - No decompression step before queries
//   - No benefit on already-divergent columns
//
// # Basic Usage
//
//	open := func() (succinctmsa.RowSource, error) {
//		return fasta.Open("alignment.fasta", false)
//	}
//	alignment, err := succinctmsa.BuildAlignment(open, succinctmsa.BuildConfig{
//		BatchWidth: 1000,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cell, err := alignment.Cell(42, 7)
//	row, err := alignment.Row(42)
//
//	if err := alignment.Store("out", 1000); err != nil {
//		log.Fatal(err)
//	}
//	reloaded, err := succinctmsa.LoadAlignment("out")
//
// # Performance Characteristics
//
// Construction: O(ceil(L/B) * S * L) symbol touches, one row-stream pass per
// batch of B columns.
// Cell access: O(log(runs_per_column)) via a binary-searched rank1.
// Row access: O(L) rank1 queries.
// Storage: proportional to total run count across all columns, not S*L.
package succinctmsa
