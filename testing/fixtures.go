package testing

import (
	"archive/zip"
	"bytes"
	"os"
	"sort"
	"strings"
	"testing"
)

// BuildZip builds a zip archive in memory from a path→content map. Paths use
// forward slashes; paths ending in "/" become directory entries. Entries are
// written in sorted order so archives are deterministic.
func BuildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if strings.HasSuffix(name, "/") {
			if _, err := w.Create(name); err != nil {
				t.Fatalf("failed to create zip dir entry %s: %v", name, err)
			}
			continue
		}
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("failed to create zip entry %s: %v", name, err)
		}
		if _, err := f.Write([]byte(files[name])); err != nil {
			t.Fatalf("failed to write zip entry %s: %v", name, err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("failed to close zip writer: %v", err)
	}
	return buf.Bytes()
}

// WriteZip builds a zip archive on disk from a path→content map
func WriteZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	if err := os.WriteFile(path, BuildZip(t, files), 0644); err != nil {
		t.Fatalf("failed to write zip fixture: %v", err)
	}
}

// BuildBranchZip builds a GitHub-style branch archive: all entries wrapped in
// a single "repo-branch" top-level directory
func BuildBranchZip(t *testing.T, wrapper string, files map[string]string) []byte {
	t.Helper()

	wrapped := make(map[string]string, len(files)+1)
	wrapped[wrapper+"/"] = ""
	for name, content := range files {
		wrapped[wrapper+"/"+name] = content
	}
	return BuildZip(t, wrapped)
}

// EmptyZip returns a structurally valid archive with zero entries
func EmptyZip(t *testing.T) []byte {
	t.Helper()
	return BuildZip(t, nil)
}
