package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version represents a dotted plugin version. Plugin metadata versions are
// loose: "2.1" and "3.2.1" are both common.
type Version struct {
	Major int
	Minor int
	Patch int
}

// String returns the version in dotted format
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Parse parses a version string like "3.2.1" or "2.1". Missing components
// default to zero; a leading "v" is tolerated.
func Parse(s string) (Version, error) {
	s = strings.TrimSpace(strings.TrimPrefix(s, "v"))
	if s == "" {
		return Version{}, fmt.Errorf("empty version string")
	}

	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}

	var v Version
	fields := []*int{&v.Major, &v.Minor, &v.Patch}
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return Version{}, fmt.Errorf("invalid version component %q in %q", part, s)
		}
		*fields[i] = n
	}

	return v, nil
}

// Compare returns -1, 0 or 1 ordering a against b
func Compare(a, b Version) int {
	pairs := [][2]int{
		{a.Major, b.Major},
		{a.Minor, b.Minor},
		{a.Patch, b.Patch},
	}
	for _, p := range pairs {
		if p[0] < p[1] {
			return -1
		}
		if p[0] > p[1] {
			return 1
		}
	}
	return 0
}

// IsNewer reports whether the remote version string is strictly newer than
// the local one. Unparseable versions on either side report false, so version
// hints degrade silently for plugins with odd metadata.
func IsNewer(remote, local string) bool {
	r, err := Parse(remote)
	if err != nil {
		return false
	}
	l, err := Parse(local)
	if err != nil {
		return false
	}
	return Compare(r, l) > 0
}
