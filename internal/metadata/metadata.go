package metadata

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// FileName is the QGIS plugin descriptor file name
const FileName = "metadata.txt"

// Plugin holds the fields we care about from a QGIS metadata.txt [general] section
type Plugin struct {
	Name        string
	Version     string
	Description string
	Changelog   string
}

// Parse reads and parses a metadata.txt file
func Parse(path string) (*Plugin, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	return ParseBytes(data)
}

// ParseFromDir parses the metadata.txt inside a plugin directory
func ParseFromDir(dir string) (*Plugin, error) {
	return Parse(filepath.Join(dir, FileName))
}

// ParseBytes parses metadata.txt content. Missing keys fall back to empty
// strings; a missing [general] section is an error.
func ParseBytes(data []byte) (*Plugin, error) {
	cfg, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}

	general, err := cfg.GetSection("general")
	if err != nil {
		return nil, fmt.Errorf("metadata has no [general] section")
	}

	return &Plugin{
		Name:        general.Key("name").String(),
		Version:     general.Key("version").String(),
		Description: general.Key("description").String(),
		Changelog:   general.Key("changelog").String(),
	}, nil
}
