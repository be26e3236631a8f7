//go:build !windows

package console

// Attach is a no-op outside Windows; the terminal is already wired up.
func Attach() bool {
	attached = true
	return true
}

// SetTitle is a no-op outside Windows
func SetTitle(title string) error {
	return nil
}

// GetWindow returns 0 outside Windows
func GetWindow() uintptr {
	return 0
}
