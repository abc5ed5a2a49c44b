package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"testing"

	"github.com/samzong/autocommit/internal/gitcmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitSafetyInRealRepo(t *testing.T) {
	assert.Equal(t, "1", os.Getenv("GO_TEST_ENV"), "Test environment flag should be set")

	client := NewClient(Options{})
	cwd, err := os.Getwd()
	require.NoError(t, err)
	if !client.IsGitRepository(context.Background()) || isTempPath(cwd) {
		t.Skip("Not in a real git repository, safety check not applicable")
	}

	code, err := client.Commit(context.Background(), "DANGER: This should never succeed", false, gitcmd.Streams{})
	assert.Error(t, err, "Commit MUST fail in real repository during tests")
	assert.Contains(t, err.Error(), "SAFETY")
	assert.Equal(t, -1, code)
}

func TestCommitInTempRepo(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "1" {
		t.Skip("Skipping integration test")
	}

	dir := CreateSafeTempRepo(t)
	AssertNotInRealRepo(t, dir)
	WriteAndStage(t, dir, "test.txt", []byte("test\n"))

	var stdout, stderr bytes.Buffer
	client := NewClient(Options{Dir: dir})
	code, err := client.Commit(context.Background(), "feat: add test file", false,
		gitcmd.Streams{Stdout: &stdout, Stderr: &stderr})
	require.NoError(t, err)
	assert.Equal(t, 0, code, stderr.String())

	out, err := exec.Command("git", "-C", dir, "log", "-1", "--format=%s").Output()
	require.NoError(t, err)
	assert.Equal(t, "feat: add test file\n", string(out))
}

func TestCommitNothingStagedMirrorsExitCode(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "1" {
		t.Skip("Skipping integration test")
	}

	dir := CreateSafeTempRepo(t)
	var stdout, stderr bytes.Buffer
	client := NewClient(Options{Dir: dir})
	code, err := client.Commit(context.Background(), "chore: nothing", false,
		gitcmd.Streams{Stdout: &stdout, Stderr: &stderr})
	require.NoError(t, err)
	assert.Equal(t, 1, code)
}
