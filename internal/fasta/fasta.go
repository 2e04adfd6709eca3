// Package fasta adapts FASTA and gzip-compressed FASTA files into the
// succinctmsa.RowSource contract: a restartable, single-pass stream of
// equal-length symbol rows. It is the only package in this module that
// knows about FASTA syntax; everything past Reader.Next is opaque bytes to
// the core.
package fasta

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/klauspost/compress/gzip"

	"github.com/axiomhq/succinctmsa"
)

// Reader streams records from a single FASTA file, optionally gzip
// compressed, as raw uppercase symbol rows. It satisfies
// succinctmsa.RowSource.
type Reader struct {
	file  *os.File
	gz    *gzip.Reader
	inner *fasta.Reader
}

// Open opens path for a single forward pass. When compressed is true, the
// file is transparently gunzipped via klauspost/compress/gzip before being
// handed to the FASTA parser.
func Open(path string, compressed bool) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", succinctmsa.ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("fasta: open %s: %w", path, err)
	}

	var src io.Reader = f
	r := &Reader{file: f}
	if compressed {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("fasta: gzip %s: %w", path, err)
		}
		r.gz = gz
		src = gz
	}

	template := linear.NewSeq("", nil, alphabet.DNAgapped)
	r.inner = fasta.NewReader(src, template)
	return r, nil
}

// Next returns the next record's symbol bytes, upper-cased, and true, or
// nil and false once the file is exhausted. Header lines are discarded;
// succinctmsa.PrePass and ColumnBuilder never need them.
func (r *Reader) Next() ([]byte, bool, error) {
	s, err := r.inner.Read()
	if err != nil {
		if err == io.EOF {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("fasta: read record: %w", err)
	}
	seq, ok := s.(*linear.Seq)
	if !ok {
		return nil, false, fmt.Errorf("fasta: unexpected record type %T", s)
	}

	raw := seq.Seq
	out := make([]byte, len(raw))
	for i, l := range raw {
		b := byte(l)
		if b >= 'a' && b <= 'z' {
			b -= 'a' - 'A'
		}
		out[i] = b
	}
	return out, true, nil
}

// Close releases the underlying file (and gzip reader, if any).
func (r *Reader) Close() error {
	if r.gz != nil {
		r.gz.Close()
	}
	return r.file.Close()
}
