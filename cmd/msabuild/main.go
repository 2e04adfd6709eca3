// Command msabuild builds, persists, reloads, and reports on succinct
// columnar MSA encodings from FASTA input.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/axiomhq/succinctmsa"
	"github.com/axiomhq/succinctmsa/internal/archive"
	"github.com/axiomhq/succinctmsa/internal/fasta"
)

// exit codes, per spec.md §6: 0 success, non-zero on file-not-found or
// format-invalid input.
const (
	exitOK             = 0
	exitInputNotFound  = 1
	exitFormatInvalid  = 2
	exitPersistFailure = 3
	exitUsage          = 4
)

type cliOptions struct {
	File       string `short:"f" long:"file" description:"path to the input FASTA file" required:"true"`
	NCols      int    `short:"n" long:"ncols" description:"batch width B" default:"1000"`
	Compressed bool   `short:"c" long:"compressed" description:"input is gzip compressed"`
	Infos      bool   `short:"i" long:"infos" description:"print (S, L) after build/load"`
	Save       bool   `short:"s" long:"save" description:"persist the alignment after building"`
	SaveDir    string `long:"save_dir" short:"d" description:"directory to persist into" default:"out"`
	Load       string `short:"l" long:"load" description:"load a previously stored alignment instead of building"`
	Strict     bool   `long:"strict" description:"fail on non-canonical symbols instead of tolerating them"`
	Config     string `long:"config" description:"optional YAML file providing flag defaults"`
	LogLevel   string `long:"log-level" description:"zerolog level" default:"info"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args)
	if err != nil {
		if flags.WroteHelp(err) {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	logger := newLogger(stderr, opts.LogLevel)

	var alignment *succinctmsa.SuccinctAlignment
	if opts.Load != "" {
		alignment, err = loadAlignment(opts.Load, logger)
	} else {
		alignment, err = buildAlignment(opts, logger)
	}
	if err != nil {
		return reportError(stderr, err)
	}

	if opts.Infos {
		length, size := alignment.Info()
		fmt.Fprintf(stdout, "rows=%d cols=%d\n", size, length)
	}

	if opts.Save {
		if err := storeAlignment(alignment, opts, logger); err != nil {
			return reportError(stderr, err)
		}
	}

	return exitOK
}

func parseOptions(args []string) (cliOptions, error) {
	var opts cliOptions

	// A config file supplies defaults; explicit flags parsed afterward
	// override anything it sets, since go-flags applies struct `default`
	// tags only to fields the config pre-pass left zero-valued.
	for i, a := range args {
		if a == "--config" && i+1 < len(args) {
			if err := loadConfig(args[i+1], &opts); err != nil {
				return opts, err
			}
		}
	}

	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return opts, err
	}
	return opts, nil
}

func loadConfig(path string, opts *cliOptions) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, opts); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	if env := os.Getenv("MSABUILD_LOG_LEVEL"); env != "" && level == "info" {
		if envLvl, err := zerolog.ParseLevel(strings.ToLower(env)); err == nil {
			lvl = envLvl
		}
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(lvl).With().Timestamp().Logger()
}

func buildAlignment(opts cliOptions, logger zerolog.Logger) (*succinctmsa.SuccinctAlignment, error) {
	open := func() (succinctmsa.RowSource, error) {
		return fasta.Open(opts.File, opts.Compressed)
	}

	var warnings int
	cfg := succinctmsa.BuildConfig{
		BatchWidth: opts.NCols,
		Logger:     logger,
		Options: succinctmsa.BuildOptions{
			Strict: opts.Strict,
			OnNonCanonical: func(row, col int, symbol byte) {
				warnings++
				logger.Warn().Int("row", row).Int("col", col).Str("symbol", string(symbol)).Msg("non-canonical symbol")
			},
		},
	}

	alignment, err := succinctmsa.BuildAlignment(open, cfg)
	if err != nil {
		return nil, err
	}
	if warnings > 0 {
		logger.Info().Int("count", warnings).Msg("tolerated non-canonical symbols")
	}
	return alignment, nil
}

func loadAlignment(path string, logger zerolog.Logger) (*succinctmsa.SuccinctAlignment, error) {
	dir := path
	if strings.HasSuffix(path, ".tar.gz") {
		stagingDir := strings.TrimSuffix(path, ".tar.gz")
		if err := archive.Unpack(path, stagingDir); err != nil {
			return nil, err
		}
		dir = stagingDir
	}
	logger.Info().Str("dir", dir).Msg("loading alignment")
	return succinctmsa.LoadAlignment(dir)
}

func storeAlignment(a *succinctmsa.SuccinctAlignment, opts cliOptions, logger zerolog.Logger) error {
	if err := a.Store(opts.SaveDir, opts.NCols); err != nil {
		return err
	}

	projectName := filepath.Base(opts.SaveDir)
	tarPath := projectName + ".tar.gz"
	if err := archive.Pack(opts.SaveDir, tarPath); err != nil {
		return fmt.Errorf("package archive: %w", err)
	}
	if err := os.RemoveAll(opts.SaveDir); err != nil {
		return fmt.Errorf("remove staging dir %s: %w", opts.SaveDir, err)
	}
	logger.Info().Str("archive", tarPath).Msg("stored alignment")
	return nil
}

func reportError(stderr io.Writer, err error) int {
	fmt.Fprintln(stderr, err)
	switch {
	case errors.Is(err, succinctmsa.ErrInputNotFound):
		return exitInputNotFound
	case errors.Is(err, succinctmsa.ErrFormatInvalid), errors.Is(err, succinctmsa.ErrLengthMismatch), errors.Is(err, succinctmsa.ErrSymbolNonCanonical):
		return exitFormatInvalid
	case errors.Is(err, succinctmsa.ErrPersistIO):
		return exitPersistFailure
	default:
		return exitFormatInvalid
	}
}
