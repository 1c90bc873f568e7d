package unifi

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a dotted controller version such as 5.10.21.
type Version []int

// ParseVersion parses a dotted version. Each component may carry a
// non-numeric suffix ("5.6.29-a"), which is ignored.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	if s == "" {
		return nil, fmt.Errorf("empty version")
	}

	parts := strings.Split(s, ".")
	v := make(Version, 0, len(parts))
	for _, p := range parts {
		end := 0
		for end < len(p) && p[end] >= '0' && p[end] <= '9' {
			end++
		}
		if end == 0 {
			return nil, fmt.Errorf("invalid version component %q in %q", p, s)
		}
		n, err := strconv.Atoi(p[:end])
		if err != nil {
			return nil, fmt.Errorf("invalid version component %q: %w", p, err)
		}
		v = append(v, n)
	}
	return v, nil
}

// String returns the version as dotted numbers.
func (v Version) String() string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

// Compare returns -1 if v < other, 0 if equal, 1 if v > other.
// Missing trailing components count as zero, so 5.5 equals 5.5.0.
func (v Version) Compare(other Version) int {
	n := max(len(v), len(other))
	for i := 0; i < n; i++ {
		a, b := v.at(i), other.at(i)
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
	}
	return 0
}

func (v Version) at(i int) int {
	if i < len(v) {
		return v[i]
	}
	return 0
}

// AtLeast reports whether detected satisfies minimum. Unparseable
// versions, including VersionUndetected, never satisfy a minimum.
func AtLeast(detected, minimum string) bool {
	d, err := ParseVersion(detected)
	if err != nil {
		return false
	}
	m, err := ParseVersion(minimum)
	if err != nil {
		return false
	}
	return d.Compare(m) >= 0
}
