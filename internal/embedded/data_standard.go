//go:build !embedded

package embedded

// Stub implementations for normal builds without an embedded snapshot.

func hasData() bool {
	return false
}

func getVersion() string {
	return ""
}

func getZipData() []byte {
	return nil
}
