// Package archive packages a stored alignment directory into a single
// <project>.tar.gz file, and unpacks one back into a directory. It is
// purely a convenience around the directory layout succinctmsa.Store and
// succinctmsa.LoadAlignment use directly; neither function requires an
// archive to exist.
package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Pack walks srcDir and writes a gzip-compressed tar archive of its
// contents to destTarGz. File paths inside the archive are relative to
// srcDir.
func Pack(srcDir, destTarGz string) error {
	out, err := os.Create(destTarGz)
	if err != nil {
		return fmt.Errorf("archive: create %s: %w", destTarGz, err)
	}
	defer out.Close()

	gw := gzip.NewWriter(out)
	defer gw.Close()
	tw := tar.NewWriter(gw)
	defer tw.Close()

	return filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return fmt.Errorf("archive: rel path for %s: %w", path, err)
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return fmt.Errorf("archive: header for %s: %w", path, err)
		}
		hdr.Name = rel
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("archive: write header for %s: %w", rel, err)
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("archive: open %s: %w", path, err)
		}
		defer f.Close()
		if _, err := io.Copy(tw, f); err != nil {
			return fmt.Errorf("archive: copy %s: %w", rel, err)
		}
		return nil
	})
}

// Unpack extracts srcTarGz into destDir, creating it if necessary.
func Unpack(srcTarGz, destDir string) error {
	in, err := os.Open(srcTarGz)
	if err != nil {
		return fmt.Errorf("archive: open %s: %w", srcTarGz, err)
	}
	defer in.Close()

	gr, err := gzip.NewReader(in)
	if err != nil {
		return fmt.Errorf("archive: gzip reader for %s: %w", srcTarGz, err)
	}
	defer gr.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("archive: mkdir %s: %w", destDir, err)
	}

	tr := tar.NewReader(gr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("archive: read tar entry: %w", err)
		}

		target := filepath.Join(destDir, filepath.Clean(hdr.Name))
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive: entry %q escapes destination", hdr.Name)
		}
		if hdr.Typeflag == tar.TypeDir {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("archive: mkdir %s: %w", target, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("archive: mkdir %s: %w", filepath.Dir(target), err)
		}
		f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
		if err != nil {
			return fmt.Errorf("archive: create %s: %w", target, err)
		}
		if _, err := io.Copy(f, tr); err != nil {
			f.Close()
			return fmt.Errorf("archive: extract %s: %w", target, err)
		}
		f.Close()
	}
}
