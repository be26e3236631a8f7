// Package embedded exposes an optional plugin snapshot compiled into the
// binary for offline installs. Normal builds carry no data; builds with
// -tags embedded ship a branch archive that installs without network access.
package embedded

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"

	"github.com/pyarchinit/pyarchinit-installer/internal/metadata"
)

// HasData returns true if an embedded plugin snapshot is available.
// This is false for normal builds and true for builds with -tags embedded.
func HasData() bool {
	return hasData()
}

// Data returns the embedded branch archive, or nil when none was compiled in
func Data() []byte {
	return getZipData()
}

// GetVersion returns the plugin version recorded in the embedded snapshot's
// metadata.txt. Returns empty string if no embedded data is available.
func GetVersion() string {
	return getVersion()
}

// readSnapshotVersion pulls metadata.txt out of a branch archive and parses
// the version field. The archive wraps everything in one repo-branch
// directory, so match on the basename.
func readSnapshotVersion(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}

	for _, f := range reader.File {
		name := f.Name
		if idx := strings.Index(name, "/"); idx != -1 {
			name = name[idx+1:]
		}
		if name != metadata.FileName {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			continue
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}

		plugin, err := metadata.ParseBytes(raw)
		if err != nil {
			continue
		}
		return plugin.Version
	}

	return ""
}
