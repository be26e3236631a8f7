package channel

import (
	"os"
	"path/filepath"
	"strings"
)

// ChannelFile persists the chosen channel between runs
const ChannelFile = ".pyarchinit-channel"

const (
	// MasterBranch is the stable release branch of the pyarchinit repository
	MasterBranch = "master"
	// DevBranch is the active development branch
	DevBranch = "feature/qt6-migration"
)

// Branch maps a channel to the concrete source branch. Anything that isn't a
// built-in channel is taken as a raw branch name.
func Branch(ch string) string {
	switch ch {
	case "stable":
		return MasterBranch
	case "dev":
		return DevBranch
	default:
		return ch
	}
}

// IsBuiltIn returns true if the channel is a built-in channel (stable or dev)
func IsBuiltIn(ch string) bool {
	return ch == "stable" || ch == "dev"
}

// Save writes the channel to the channel file in the specified directory
func Save(baseDir, ch string) error {
	channelPath := filepath.Join(baseDir, ChannelFile)
	return os.WriteFile(channelPath, []byte(ch), 0644)
}

// Load reads the channel from the channel file in the specified directory
func Load(baseDir string) (string, error) {
	channelPath := filepath.Join(baseDir, ChannelFile)
	data, err := os.ReadFile(channelPath)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
