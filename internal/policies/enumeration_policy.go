package policies

import (
	"path/filepath"
	"strings"
)

// defaultExcludedDirs are parent directories whose metadata files never
// describe the primary product: helper tools, frameworks, plug-ins, and
// nested library or binary trees.
var defaultExcludedDirs = []string{
	"Extensions",
	"Frameworks",
	"Helpers",
	"Library",
	"MacOS",
	"PlugIns",
	"Resources",
	"SharedSupport",
	"opt",
	"bin",
}

// EnumerationPolicy decides which paths metadata enumeration may visit.
// Matching is by path component, so an exclusion applies at any depth.
type EnumerationPolicy struct {
	excluded map[string]struct{}
}

func NewEnumerationPolicy(extra ...string) EnumerationPolicy {
	policy := EnumerationPolicy{excluded: map[string]struct{}{}}
	for _, name := range defaultExcludedDirs {
		policy.excluded[name] = struct{}{}
	}
	for _, name := range extra {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		policy.excluded[trimmed] = struct{}{}
	}
	return policy
}

// Excluded reports whether any component of relPath is an excluded
// directory name.
func (p EnumerationPolicy) Excluded(relPath string) bool {
	if relPath == "" || relPath == "." {
		return false
	}
	for _, component := range strings.Split(filepath.ToSlash(relPath), "/") {
		if _, ok := p.excluded[component]; ok {
			return true
		}
	}
	return false
}

// ExcludedDir reports whether a single directory name is excluded,
// for use as a walk skip check.
func (p EnumerationPolicy) ExcludedDir(name string) bool {
	_, ok := p.excluded[name]
	return ok
}
