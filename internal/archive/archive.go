package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pyarchinit/pyarchinit-installer/internal/download"
	"github.com/pyarchinit/pyarchinit-installer/internal/paths"
)

// Extract unpacks a zip file into destDir, preserving the archive's own
// directory layout. GitHub branch archives wrap everything in a single
// "repo-branch" directory; that wrapper is kept so callers can treat it as
// the source tree.
func Extract(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer r.Close()

	absDest, err := filepath.Abs(destDir)
	if err != nil {
		return fmt.Errorf("failed to resolve destination: %w", err)
	}
	if err := os.MkdirAll(absDest, 0755); err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	for _, f := range r.File {
		// Archive paths use forward slashes, normalize to platform format
		fpath := filepath.Join(absDest, paths.Denormalize(f.Name))

		// Security: ensure path doesn't escape the destination
		absPath, err := download.ValidatePath(absDest, fpath)
		if err != nil {
			return fmt.Errorf("archive entry %s: %w", f.Name, err)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(absPath, f.Mode()); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", f.Name, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", f.Name, err)
		}

		if err := extractFile(f, absPath); err != nil {
			return fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
	}

	return nil
}

// TopLevelEntries lists the names of the top-level entries in a directory,
// in listing order
func TopLevelEntries(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read extraction directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

func extractFile(f *zip.File, targetPath string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}
