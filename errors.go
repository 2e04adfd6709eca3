package succinctmsa

import "errors"

// Sentinel errors for the core error kinds named in the design: each is
// fatal and surfaced to the caller except ErrSymbolNonCanonical, which is
// only returned when strict alphabet validation is requested.
var (
	// ErrInputNotFound indicates the input path does not exist.
	ErrInputNotFound = errors.New("succinctmsa: input not found")

	// ErrFormatInvalid indicates a malformed FASTA record.
	ErrFormatInvalid = errors.New("succinctmsa: malformed fasta record")

	// ErrLengthMismatch indicates a record whose length differs from the
	// alignment's established column count L.
	ErrLengthMismatch = errors.New("succinctmsa: record length mismatch")

	// ErrIndexOutOfRange indicates a row or column index outside its bounds.
	ErrIndexOutOfRange = errors.New("succinctmsa: index out of range")

	// ErrPersistIO indicates a read or write failure during store/load.
	ErrPersistIO = errors.New("succinctmsa: persistence I/O failure")

	// ErrSymbolNonCanonical indicates a symbol outside {A,C,G,T,U,N,-}.
	// In lenient mode (the default) this is only reported via a callback,
	// never returned; in strict mode it is fatal.
	ErrSymbolNonCanonical = errors.New("succinctmsa: symbol outside canonical alphabet")

	// ErrBadVersion indicates a persisted artifact with an unrecognized
	// format version.
	ErrBadVersion = errors.New("succinctmsa: unsupported on-disk format version")

	// ErrNotReady indicates an operation requiring a READY alignment was
	// called before Build/Load completed, after the alignment was stored, or
	// after it was dropped.
	ErrNotReady = errors.New("succinctmsa: alignment is not in READY state")
)

// canonicalAlphabet is the canonical alphabet {A,C,G,T,U,N,-} named in spec §3/§7.
var canonicalAlphabet = map[byte]bool{
	'A': true, 'C': true, 'G': true, 'T': true, 'U': true, 'N': true, '-': true,
}

func isCanonical(b byte) bool {
	return canonicalAlphabet[b]
}
