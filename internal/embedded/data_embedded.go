//go:build embedded

package embedded

import (
	_ "embed"
)

// Embedded plugin snapshot - populated at build time.
// To build with an embedded snapshot:
//   1. Place pyarchinit.zip (a GitHub branch archive) in internal/embedded/release/
//   2. Run: go build -tags embedded

//go:embed release/pyarchinit.zip
var embeddedZip []byte

// cachedVersion stores the version extracted from metadata.txt in the ZIP
var cachedVersion string

func hasData() bool {
	return len(embeddedZip) > 0
}

func getVersion() string {
	if cachedVersion != "" {
		return cachedVersion
	}
	cachedVersion = readSnapshotVersion(embeddedZip)
	return cachedVersion
}

func getZipData() []byte {
	return embeddedZip
}
