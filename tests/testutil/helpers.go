// Package testutil provides shared test helpers used across integration,
// e2e, and unit test packages.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// RepoRoot returns the absolute path to the repository root by walking
// up from the current working directory. It fails the test if the
// working directory cannot be determined.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// KpkgCommand compiles ./cmd/kpkg and returns an invocation of the
// resulting binary rooted at the repository, the way an audit scheduler
// would run it. The binary runs directly (not under `go run`, which
// reports exit status 1 for any nonzero child exit) so tests can assert
// on the process exit code.
func KpkgCommand(t *testing.T, args ...string) *exec.Cmd {
	t.Helper()
	root := RepoRoot(t)
	bin := filepath.Join(t.TempDir(), "kpkg")
	build := exec.Command("go", "build", "-o", bin, "./cmd/kpkg")
	build.Dir = root
	build.Env = append(os.Environ(), "GO111MODULE=on")
	out, err := build.CombinedOutput()
	require.NoError(t, err, string(out))

	cmd := exec.Command(bin, args...)
	cmd.Dir = root
	cmd.Env = append(os.Environ(), "GO111MODULE=on")
	return cmd
}

// CopyTree copies a fixture directory into dst, preserving the relative
// layout. Regular files only; fixtures carry no symlinks.
func CopyTree(src string, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0644)
	})
}
