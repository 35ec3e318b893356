package gnupg

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var versionRegex = regexp.MustCompile(`(?m)^cfg:version:(\d+(?:\.\d+)*)`)

// Version is the gpg version reported by --list-config.
type Version struct {
	Major int
	Minor int
	Full  string
}

// loopbackVersion is the first release that accepts --pinentry-mode loopback.
var loopbackVersion = Version{Major: 2, Minor: 1}

// ParseVersion extracts the version from --list-config --with-colons output.
// It returns the zero version "0.0.0" when no version line is present.
func ParseVersion(raw string) Version {
	m := versionRegex.FindStringSubmatch(raw)
	if m == nil {
		return Version{Full: "0.0.0"}
	}
	v := Version{Full: m[1]}
	parts := strings.Split(m[1], ".")
	v.Major, _ = strconv.Atoi(parts[0])
	if len(parts) > 1 {
		v.Minor, _ = strconv.Atoi(parts[1])
	}
	return v
}

// AtLeast reports whether v is the same as or newer than other, by major and minor.
func (v Version) AtLeast(other Version) bool {
	if v.Major != other.Major {
		return v.Major > other.Major
	}
	return v.Minor >= other.Minor
}

func (v Version) String() string {
	if v.Full != "" {
		return v.Full
	}
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}
