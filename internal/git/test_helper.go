//go:build !prod

package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// CreateSafeTempRepo initializes an isolated git repository in a temporary
// directory and returns its path. The directory is removed when the test ends.
func CreateSafeTempRepo(t *testing.T) string {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir, err := os.MkdirTemp("", "autocommit_git_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.RemoveAll(dir); err != nil {
			t.Errorf("Warning: Failed to remove temp directory: %v", err)
		}
	})

	runGit(t, dir, "init", "--quiet")
	runGit(t, dir, "config", "user.name", "Test")
	runGit(t, dir, "config", "user.email", "test@test.com")
	runGit(t, dir, "config", "commit.gpgsign", "false")
	return dir
}

// WriteAndStage writes content to name inside dir and stages it.
func WriteAndStage(t *testing.T, dir, name string, content []byte) {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	runGit(t, dir, "add", name)
}

// AssertNotInRealRepo fails the test when dir is a git repository outside
// the temporary directory.
func AssertNotInRealRepo(t *testing.T, dir string) {
	t.Helper()

	client := NewClient(Options{Dir: dir})
	if client.IsGitRepository(context.Background()) && !isTempPath(dir) {
		t.Fatal("SAFETY: Test is running git operations in a real repository: " + dir)
	}
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
}
