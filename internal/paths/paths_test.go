package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNormalize tests forward-slash path normalization
func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "already normalized",
			in:   "pyarchinit/metadata.txt",
			want: "pyarchinit/metadata.txt",
		},
		{
			name: "redundant elements cleaned",
			in:   "pyarchinit//sub/./metadata.txt",
			want: "pyarchinit/sub/metadata.txt",
		},
		{
			name: "single name",
			in:   "metadata.txt",
			want: "metadata.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestDenormalize tests conversion to platform separators
func TestDenormalize(t *testing.T) {
	got := Denormalize("a/b/c")
	want := filepath.Join("a", "b", "c")
	if got != want {
		t.Errorf("Denormalize() = %q, want %q", got, want)
	}
}

// TestCleanLower tests case-insensitive comparison form
func TestCleanLower(t *testing.T) {
	a := CleanLower("PyArchInit")
	b := CleanLower("pyarchinit")
	if a != b {
		t.Errorf("CleanLower() mismatch: %q vs %q", a, b)
	}
}

// TestPluginsDir_EnvOverride tests that QGIS_PLUGINPATH wins over detection
func TestPluginsDir_EnvOverride(t *testing.T) {
	override := t.TempDir()
	t.Setenv(EnvPluginsDir, override)

	got, err := PluginsDir()
	if err != nil {
		t.Fatalf("PluginsDir() error = %v", err)
	}
	if got != filepath.Clean(override) {
		t.Errorf("PluginsDir() = %q, want %q", got, override)
	}
}

// TestPluginsDir_Default tests profile path detection without the override
func TestPluginsDir_Default(t *testing.T) {
	t.Setenv(EnvPluginsDir, "")

	got, err := PluginsDir()
	if err != nil {
		t.Fatalf("PluginsDir() error = %v", err)
	}

	// Every platform layout ends with the QGIS python plugins suffix
	suffix := filepath.Join("profiles", "default", "python", "plugins")
	if !strings.HasSuffix(got, suffix) {
		t.Errorf("PluginsDir() = %q, want suffix %q", got, suffix)
	}
}

// TestFindActual tests case-insensitive file resolution
func TestFindActual(t *testing.T) {
	tempDir := t.TempDir()
	actual := filepath.Join(tempDir, "PyArchInit")
	if err := os.MkdirAll(actual, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	t.Run("exact match", func(t *testing.T) {
		got, err := FindActual(actual)
		if err != nil {
			t.Fatalf("FindActual() error = %v", err)
		}
		if got != actual {
			t.Errorf("FindActual() = %q, want %q", got, actual)
		}
	})

	t.Run("different case", func(t *testing.T) {
		got, err := FindActual(filepath.Join(tempDir, "pyarchinit"))
		if err != nil {
			t.Fatalf("FindActual() error = %v", err)
		}
		// Case-insensitive filesystems resolve via Stat, others via ReadDir
		if !strings.EqualFold(got, actual) {
			t.Errorf("FindActual() = %q, want %q", got, actual)
		}
	})

	t.Run("missing file returned as-is", func(t *testing.T) {
		missing := filepath.Join(tempDir, "nothing-here")
		got, err := FindActual(missing)
		if err != nil {
			t.Fatalf("FindActual() error = %v", err)
		}
		if got != missing {
			t.Errorf("FindActual() = %q, want %q", got, missing)
		}
	})
}
