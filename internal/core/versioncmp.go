package core

import (
	"strconv"
	"strings"
)

// compareVersions returns -1, 0, or 1 ordering two version strings.
// Strings are split on separators into segments, each segment compared
// as an unsigned integer, with the shorter string right-padded with
// zero segments. The ordering is total over arbitrary inputs.
func compareVersions(a string, b string) int {
	segA := versionSegments(a)
	segB := versionSegments(b)
	for len(segA) < len(segB) {
		segA = append(segA, 0)
	}
	for len(segB) < len(segA) {
		segB = append(segB, 0)
	}
	for i := range segA {
		if segA[i] < segB[i] {
			return -1
		}
		if segA[i] > segB[i] {
			return 1
		}
	}
	return 0
}

// VersionAtLeast reports whether the installed version satisfies the
// required minimum. Equal versions are compliant.
func VersionAtLeast(installed string, required string) bool {
	return compareVersions(installed, required) >= 0
}

// versionSegments splits a version string on separator runes and maps
// each segment to its numeric value.
func versionSegments(value string) []uint64 {
	fields := strings.FieldsFunc(strings.TrimSpace(value), isVersionSeparator)
	segments := make([]uint64, 0, len(fields))
	for _, field := range fields {
		segments = append(segments, segmentValue(field))
	}
	return segments
}

func isVersionSeparator(r rune) bool {
	return !(r >= '0' && r <= '9') && !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z')
}

// segmentValue parses the leading digit run of a segment. Segments with
// no leading digits count as zero; digit runs beyond the uint64 range
// compare as saturated.
func segmentValue(segment string) uint64 {
	end := 0
	for end < len(segment) && segment[end] >= '0' && segment[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	parsed, err := strconv.ParseUint(segment[:end], 10, 64)
	if err != nil {
		return ^uint64(0)
	}
	return parsed
}
