package locate

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pyarchinit/pyarchinit-installer/internal/metadata"
)

// VersionUnknown is reported when an installation is found but its version
// cannot be read from metadata.txt
const VersionUnknown = "Unknown"

// TargetName is the canonical plugin folder name installs are written to
const TargetName = "pyarchinit"

// candidateNames are the known folder names a pyarchinit installation may
// live under, checked in order
var candidateNames = []string{
	"pyarchinit",
	"pyarchinit-master",
	"pyarchinit-main",
	"pyarchinit-feature-qt6-migration",
	"pyarchinit-dev",
}

// excludeNames are the installer's own folder names, never a match
var excludeNames = []string{
	"pyarchinit_installer",
	"pyarchinit-installer",
}

// Info is a snapshot of the detected installation. When Exists is true, Path,
// Version and FolderName are all populated (Version may be VersionUnknown).
type Info struct {
	Exists     bool
	Path       string
	Version    string
	FolderName string
}

// Locator scans a QGIS plugins directory for a pyarchinit installation
type Locator struct {
	pluginsDir string
}

// New creates a Locator for the given plugins directory
func New(pluginsDir string) *Locator {
	return &Locator{pluginsDir: pluginsDir}
}

// PluginsDir returns the directory this locator scans
func (l *Locator) PluginsDir() string {
	return l.pluginsDir
}

// TargetPath returns the canonical installation path
func (l *Locator) TargetPath() string {
	return filepath.Join(l.pluginsDir, TargetName)
}

// Find scans for an existing installation and returns a fresh snapshot.
// Read-only: one directory level plus metadata.txt reads.
func (l *Locator) Find() Info {
	names := make([]string, len(candidateNames))
	copy(names, candidateNames)

	// Pick up any folder starting with "pyarchinit" the fixed list misses
	if entries, err := os.ReadDir(l.pluginsDir); err == nil {
		for _, entry := range entries {
			name := entry.Name()
			if isExcluded(name) || !entry.IsDir() {
				continue
			}
			if strings.HasPrefix(strings.ToLower(name), "pyarchinit") && !contains(names, name) {
				names = append(names, name)
			}
		}
	}

	for _, name := range names {
		if isExcluded(name) {
			continue
		}

		pluginPath := filepath.Join(l.pluginsDir, name)
		stat, err := os.Stat(pluginPath)
		if err != nil || !stat.IsDir() {
			continue
		}

		metadataPath := filepath.Join(pluginPath, metadata.FileName)
		if _, err := os.Stat(metadataPath); err != nil {
			// No metadata.txt, might be pyarchinit without metadata
			return match(pluginPath, name, VersionUnknown)
		}

		plugin, err := metadata.Parse(metadataPath)
		if err != nil {
			// Unreadable metadata still counts as a match
			return match(pluginPath, name, VersionUnknown)
		}

		// The installer plugin itself is never the target
		if strings.Contains(strings.ToLower(plugin.Name), "installer") {
			continue
		}

		version := plugin.Version
		if version == "" {
			version = VersionUnknown
		}
		return match(pluginPath, name, version)
	}

	return Info{}
}

func match(path, folderName, version string) Info {
	return Info{
		Exists:     true,
		Path:       path,
		Version:    version,
		FolderName: folderName,
	}
}

func isExcluded(name string) bool {
	for _, excluded := range excludeNames {
		if strings.EqualFold(name, excluded) {
			return true
		}
	}
	return false
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
