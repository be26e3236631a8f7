package locate

import (
	"os"
	"path/filepath"
	"testing"
)

func writePlugin(t *testing.T, pluginsDir, folderName, metadataContent string) {
	t.Helper()
	dir := filepath.Join(pluginsDir, folderName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}
	if metadataContent != "" {
		path := filepath.Join(dir, "metadata.txt")
		if err := os.WriteFile(path, []byte(metadataContent), 0644); err != nil {
			t.Fatalf("failed to write metadata: %v", err)
		}
	}
}

// TestFind_EmptyPluginsDir tests that an empty directory yields no match
func TestFind_EmptyPluginsDir(t *testing.T) {
	info := New(t.TempDir()).Find()

	if info.Exists {
		t.Errorf("Find() = %+v, want no match", info)
	}
	if info.Path != "" || info.Version != "" || info.FolderName != "" {
		t.Errorf("Find() non-match should be zero valued, got %+v", info)
	}
}

// TestFind_MissingPluginsDir tests that a nonexistent directory yields no match
func TestFind_MissingPluginsDir(t *testing.T) {
	info := New(filepath.Join(t.TempDir(), "does-not-exist")).Find()
	if info.Exists {
		t.Errorf("Find() = %+v, want no match", info)
	}
}

// TestFind_ValidMetadata tests the round-trip against a well-formed installation
func TestFind_ValidMetadata(t *testing.T) {
	pluginsDir := t.TempDir()
	writePlugin(t, pluginsDir, "pyarchinit-master", "[general]\nname=pyarchinit\nversion=2.1\n")

	info := New(pluginsDir).Find()

	if !info.Exists {
		t.Fatal("Find() found nothing, want match")
	}
	if info.FolderName != "pyarchinit-master" {
		t.Errorf("FolderName = %q, want %q", info.FolderName, "pyarchinit-master")
	}
	if info.Version != "2.1" {
		t.Errorf("Version = %q, want %q", info.Version, "2.1")
	}
	if info.Path != filepath.Join(pluginsDir, "pyarchinit-master") {
		t.Errorf("Path = %q, want plugin folder path", info.Path)
	}
}

// TestFind_ExcludesInstallerFolders tests that the installer's own folders are
// never reported, even with plugin-looking metadata inside
func TestFind_ExcludesInstallerFolders(t *testing.T) {
	tests := []string{
		"pyarchinit_installer",
		"pyarchinit-installer",
		"PyArchInit_Installer",
		"PYARCHINIT-INSTALLER",
	}

	for _, folder := range tests {
		t.Run(folder, func(t *testing.T) {
			pluginsDir := t.TempDir()
			writePlugin(t, pluginsDir, folder, "[general]\nname=pyarchinit\nversion=9.9\n")

			info := New(pluginsDir).Find()
			if info.Exists {
				t.Errorf("Find() matched excluded folder %q: %+v", folder, info)
			}
		})
	}
}

// TestFind_SkipsInstallerMetadataName tests that a candidate declaring an
// installer name in metadata is skipped in favor of later candidates
func TestFind_SkipsInstallerMetadataName(t *testing.T) {
	pluginsDir := t.TempDir()
	writePlugin(t, pluginsDir, "pyarchinit", "[general]\nname=PyArchInit Installer\nversion=1.0\n")
	writePlugin(t, pluginsDir, "pyarchinit-master", "[general]\nname=pyarchinit\nversion=3.0\n")

	info := New(pluginsDir).Find()

	if !info.Exists {
		t.Fatal("Find() found nothing, want pyarchinit-master")
	}
	if info.FolderName != "pyarchinit-master" {
		t.Errorf("FolderName = %q, want %q", info.FolderName, "pyarchinit-master")
	}
}

// TestFind_MalformedMetadata tests fail-open parsing: a plausibly named folder
// with broken metadata is still a match with version Unknown
func TestFind_MalformedMetadata(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing general section",
			content: "[about]\nname=pyarchinit\n",
		},
		{
			name:    "no delimiters",
			content: "this is not an ini file at all",
		},
		{
			name:    "empty file",
			content: " ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pluginsDir := t.TempDir()
			writePlugin(t, pluginsDir, "pyarchinit", tt.content)

			info := New(pluginsDir).Find()

			if !info.Exists {
				t.Fatal("Find() found nothing, want fail-open match")
			}
			if info.Version != VersionUnknown {
				t.Errorf("Version = %q, want %q", info.Version, VersionUnknown)
			}
		})
	}
}

// TestFind_NoMetadataFile tests that a bare plausibly named folder matches
func TestFind_NoMetadataFile(t *testing.T) {
	pluginsDir := t.TempDir()
	writePlugin(t, pluginsDir, "pyarchinit", "")

	info := New(pluginsDir).Find()

	if !info.Exists {
		t.Fatal("Find() found nothing, want match")
	}
	if info.Version != VersionUnknown {
		t.Errorf("Version = %q, want %q", info.Version, VersionUnknown)
	}
}

// TestFind_MissingVersionKey tests the Unknown fallback for a missing version key
func TestFind_MissingVersionKey(t *testing.T) {
	pluginsDir := t.TempDir()
	writePlugin(t, pluginsDir, "pyarchinit", "[general]\nname=pyarchinit\n")

	info := New(pluginsDir).Find()

	if !info.Exists {
		t.Fatal("Find() found nothing, want match")
	}
	if info.Version != VersionUnknown {
		t.Errorf("Version = %q, want %q", info.Version, VersionUnknown)
	}
}

// TestFind_PrefixScan tests that unusual pyarchinit-prefixed folder names are
// detected beyond the fixed candidate list
func TestFind_PrefixScan(t *testing.T) {
	pluginsDir := t.TempDir()
	writePlugin(t, pluginsDir, "pyarchinit-experimental-build", "[general]\nname=pyarchinit\nversion=4.0\n")

	info := New(pluginsDir).Find()

	if !info.Exists {
		t.Fatal("Find() found nothing, want prefix-scanned match")
	}
	if info.FolderName != "pyarchinit-experimental-build" {
		t.Errorf("FolderName = %q, want %q", info.FolderName, "pyarchinit-experimental-build")
	}
}

// TestFind_CandidateOrder tests that the fixed list order decides between
// multiple present installations
func TestFind_CandidateOrder(t *testing.T) {
	pluginsDir := t.TempDir()
	writePlugin(t, pluginsDir, "pyarchinit-dev", "[general]\nname=pyarchinit\nversion=5.0\n")
	writePlugin(t, pluginsDir, "pyarchinit", "[general]\nname=pyarchinit\nversion=1.0\n")

	info := New(pluginsDir).Find()

	if info.FolderName != "pyarchinit" {
		t.Errorf("FolderName = %q, want first candidate %q", info.FolderName, "pyarchinit")
	}
}

// TestFind_IgnoresPlainFiles tests that a file named like the plugin is skipped
func TestFind_IgnoresPlainFiles(t *testing.T) {
	pluginsDir := t.TempDir()
	path := filepath.Join(pluginsDir, "pyarchinit")
	if err := os.WriteFile(path, []byte("not a directory"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	info := New(pluginsDir).Find()
	if info.Exists {
		t.Errorf("Find() matched a plain file: %+v", info)
	}
}

// TestTargetPath tests canonical path construction
func TestTargetPath(t *testing.T) {
	pluginsDir := t.TempDir()
	got := New(pluginsDir).TargetPath()
	want := filepath.Join(pluginsDir, TargetName)
	if got != want {
		t.Errorf("TargetPath() = %q, want %q", got, want)
	}
}
