// Copyright (c) The duochat authors. All rights reserved.

package duochat

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a server semantic version as a dotted (major, minor, patch)
// triple. The zero value is the unknown version, which satisfies no
// threshold.
type Version struct {
	Major int
	Minor int
	Patch int

	known bool
}

// UnknownVersion is returned when version discovery fails. It compares below
// every threshold.
var UnknownVersion = Version{}

// NewVersion creates a known Version from its components.
func NewVersion(major, minor, patch int) Version {
	return Version{Major: major, Minor: minor, Patch: patch, known: true}
}

// ParseVersion parses a dotted triple such as "17.10.2" or "17.10.2-ee".
// A pre-release or build suffix on the patch component is ignored. Anything
// that does not yield three integer components parses as [UnknownVersion].
func ParseVersion(s string) Version {
	parts := strings.SplitN(strings.TrimSpace(s), ".", 3)
	if len(parts) != 3 {
		return UnknownVersion
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return UnknownVersion
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return UnknownVersion
	}

	// The patch component may carry a suffix ("2-ee", "0-pre"); only the
	// leading digits count.
	digits := parts[2]
	for i, r := range parts[2] {
		if r < '0' || r > '9' {
			digits = parts[2][:i]
			break
		}
	}
	patch, err := strconv.Atoi(digits)
	if err != nil {
		return UnknownVersion
	}

	return NewVersion(major, minor, patch)
}

// Known reports whether the version was successfully discovered and parsed.
func (v Version) Known() bool { return v.known }

// AtLeast reports whether v meets the given minimum version under
// component-wise integer comparison. An unknown version meets no minimum.
func (v Version) AtLeast(min Version) bool {
	if !v.known {
		return false
	}
	if v.Major != min.Major {
		return v.Major > min.Major
	}
	if v.Minor != min.Minor {
		return v.Minor > min.Minor
	}
	return v.Patch >= min.Patch
}

// String returns the dotted form, or "unknown" for the unknown version.
func (v Version) String() string {
	if !v.known {
		return "unknown"
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
