package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// EnvPluginsDir overrides plugins directory detection when set
const EnvPluginsDir = "QGIS_PLUGINPATH"

// Normalize converts a path to use forward slashes (for archive/cross-platform comparison)
func Normalize(p string) string {
	return strings.ReplaceAll(filepath.Clean(p), string(filepath.Separator), "/")
}

// Denormalize converts a path from forward slashes to platform-specific separators
func Denormalize(p string) string {
	return strings.ReplaceAll(p, "/", string(filepath.Separator))
}

// CleanLower returns a cleaned, lowercase path for case-insensitive comparison
func CleanLower(p string) string {
	return strings.ToLower(filepath.Clean(p))
}

// PluginsDir returns the QGIS python plugins directory for the default profile.
// The QGIS_PLUGINPATH environment variable takes precedence when set.
func PluginsDir() (string, error) {
	if env := os.Getenv(EnvPluginsDir); env != "" {
		return filepath.Clean(env), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}

	var profileRoot string
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		profileRoot = filepath.Join(appData, "QGIS", "QGIS3")
	case "darwin":
		profileRoot = filepath.Join(home, "Library", "Application Support", "QGIS", "QGIS3")
	default:
		profileRoot = filepath.Join(home, ".local", "share", "QGIS", "QGIS3")
	}

	return filepath.Join(profileRoot, "profiles", "default", "python", "plugins"), nil
}

// FindActual finds the actual case of a file on case-insensitive filesystems
func FindActual(targetPath string) (string, error) {
	if _, err := os.Stat(targetPath); err == nil {
		return targetPath, nil
	}

	dir := filepath.Dir(targetPath)
	filename := filepath.Base(targetPath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return targetPath, nil
	}

	for _, entry := range entries {
		if strings.EqualFold(entry.Name(), filename) {
			return filepath.Join(dir, entry.Name()), nil
		}
	}

	return targetPath, nil
}
