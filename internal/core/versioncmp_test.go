package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ---------------------------------------------------------------------------
// compareVersions
// ---------------------------------------------------------------------------

func TestCompareVersionsNumericSegments(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected int
	}{
		{"single segment less", "9", "10", -1},
		{"single segment greater", "10", "9", 1},
		{"numeric not lexical", "1.9", "1.10", -1},
		{"equal", "1.2.3", "1.2.3", 0},
		{"trailing zero pad", "2.0", "2", 0},
		{"longer wins when nonzero", "1.2.1", "1.2", 1},
		{"shorter loses against nonzero tail", "1.2", "1.2.1", -1},
		{"major beats minor", "2.0", "1.99.99", 1},
		{"mixed separators", "1-2_3", "1.2.3", 0},
		{"leading zeros ignored", "01.002", "1.2", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, compareVersions(tt.a, tt.b))
		})
	}
}

func TestCompareVersionsNonNumericSegments(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected int
	}{
		{"alpha segment counts as zero", "1.beta", "1.0", 0},
		{"leading digits win over alpha", "1.2b3", "1.2", 0},
		{"digit run inside segment", "1.2b3", "1.3", -1},
		{"both empty", "", "", 0},
		{"empty against zero", "", "0.0", 0},
		{"empty against release", "", "1.0", -1},
		{"whitespace only", "   ", "0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, compareVersions(tt.a, tt.b))
		})
	}
}

func TestCompareVersionsIsTotal(t *testing.T) {
	inputs := []string{"", "1", "1.0", "banana", "1.2.3-rc1", "10", "9.9.9.9", "0.0.0"}
	for _, a := range inputs {
		for _, b := range inputs {
			got := compareVersions(a, b)
			flipped := compareVersions(b, a)
			assert.Equal(t, -flipped, got, "antisymmetry for %q vs %q", a, b)
		}
	}
}

func TestCompareVersionsHugeDigitRuns(t *testing.T) {
	// Runs beyond the uint64 range saturate rather than failing.
	huge := "99999999999999999999999"
	assert.Equal(t, 1, compareVersions(huge, "1"))
	assert.Equal(t, 0, compareVersions(huge, huge))
}

// ---------------------------------------------------------------------------
// VersionAtLeast
// ---------------------------------------------------------------------------

func TestVersionAtLeast(t *testing.T) {
	tests := []struct {
		name      string
		installed string
		required  string
		expected  bool
	}{
		{"equal is compliant", "1.2.3", "1.2.3", true},
		{"newer is compliant", "1.10", "1.9", true},
		{"older is deficient", "9", "10", false},
		{"zero pad compliant", "2.0", "2", true},
		{"zero pad reversed compliant", "2", "2.0", true},
		{"patch behind", "1.2.2", "1.2.3", false},
		{"build suffix ignored when zero", "1.2.0-beta", "1.2", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, VersionAtLeast(tt.installed, tt.required))
		})
	}
}
