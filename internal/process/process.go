package process

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// QGIS ships two Windows binaries depending on the release track
var qgisProcessNames = []string{"qgis-bin.exe", "qgis-ltr-bin.exe"}

// IsQGISRunning reports whether a QGIS process is currently running.
// Replacing plugin files under a running QGIS leaves the old code loaded
// until restart, so callers warn before proceeding.
func IsQGISRunning() bool {
	if runtime.GOOS == "windows" {
		for _, name := range qgisProcessNames {
			if isProcessRunning(name) {
				return true
			}
		}
		return false
	}

	// On macOS and Linux the binary is just "qgis"
	cmd := exec.Command("pgrep", "-x", "qgis")
	if err := cmd.Run(); err != nil {
		return false
	}
	return true
}

// isProcessRunning checks a single image name via tasklist
func isProcessRunning(name string) bool {
	cmd := exec.Command("tasklist", "/FI", fmt.Sprintf("IMAGENAME eq %s", name), "/FO", "CSV", "/NH")
	output, err := cmd.Output()
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(output)), strings.ToLower(name))
}

// WaitForTermination polls until the specified process is no longer running
// Returns true if process terminated, false if timeout occurred
func WaitForTermination(processName string, timeout time.Duration) bool {
	start := time.Now()
	for time.Since(start) < timeout {
		if !isRunningByName(processName) {
			return true
		}
		time.Sleep(100 * time.Millisecond)
	}
	return !isRunningByName(processName)
}

func isRunningByName(processName string) bool {
	if runtime.GOOS == "windows" {
		return isProcessRunning(processName)
	}
	cmd := exec.Command("pgrep", "-x", processName)
	return cmd.Run() == nil
}
