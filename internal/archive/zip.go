// Package archive bundles a file selection into a single zip for template
// upload.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ZipPaths bundles the given files and directories into one zip archive.
// Files enter under their base name; directories enter recursively under
// their base directory. Entry names always use forward slashes.
func ZipPaths(paths []string) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("archive.ZipPaths: %w", err)
		}
		if info.IsDir() {
			if err := addDir(w, p); err != nil {
				return nil, fmt.Errorf("archive.ZipPaths: %w", err)
			}
			continue
		}
		if err := addFile(w, p, filepath.Base(p)); err != nil {
			return nil, fmt.Errorf("archive.ZipPaths: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("archive.ZipPaths: close: %w", err)
	}
	return buf.Bytes(), nil
}

func addDir(w *zip.Writer, dir string) error {
	base := filepath.Base(dir)
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		return addFile(w, path, filepath.ToSlash(filepath.Join(base, rel)))
	})
}

func addFile(w *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck // read-only file

	entry, err := w.Create(filepath.ToSlash(name))
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, f)
	return err
}
