package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/samzong/autocommit/internal/gitcmd"
	"github.com/samzong/autocommit/internal/gitutil"
)

// ErrBinaryDiff is returned when the staged diff is not valid UTF-8 text.
var ErrBinaryDiff = errors.New("staged changes contain non-text content")

// Options configures a Client.
type Options struct {
	Verbose bool
	Dir     string
	Logger  io.Writer
}

// Client runs the git commands autocommit needs.
type Client struct {
	runner gitcmd.Runner
}

func NewClient(opts Options) *Client {
	return &Client{
		runner: gitcmd.Runner{
			Verbose: opts.Verbose,
			Dir:     opts.Dir,
			Logger:  opts.Logger,
		},
	}
}

// IsGitRepository reports whether the client's directory is inside a work tree.
func (c *Client) IsGitRepository(ctx context.Context) bool {
	result, err := c.runner.Run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && result.StdoutString(true) == "true"
}

// StagedDiff returns the staged diff with surrounding whitespace trimmed.
// With ignoreWhitespace set, whitespace-only and blank-line changes are left
// out of the diff.
func (c *Client) StagedDiff(ctx context.Context, ignoreWhitespace bool) (string, error) {
	args := []string{"--no-pager", "diff", "--staged"}
	if ignoreWhitespace {
		args = append(args, "--ignore-all-space", "--ignore-blank-lines")
	}

	result, err := c.runner.Run(ctx, args...)
	if err != nil {
		return "", gitutil.WrapGitError("git diff --staged failed", result, err)
	}
	if !utf8.Valid(result.Stdout) {
		return "", ErrBinaryDiff
	}
	return result.StdoutString(true), nil
}

// Commit runs git commit attached to the given streams and returns git's exit
// code. With edit set, git opens the editor prefilled with message. Comment
// lines are always stripped, so a message made only of comments aborts the
// commit with a non-zero code.
func (c *Client) Commit(ctx context.Context, message string, edit bool, streams gitcmd.Streams) (int, error) {
	if err := c.checkSafety(ctx); err != nil {
		return -1, err
	}

	args := []string{"commit", "--cleanup=strip", "--message", message}
	if edit {
		args = append(args, "--edit")
	}
	code, err := c.runner.RunInteractive(ctx, streams, args...)
	if err != nil {
		return code, fmt.Errorf("git commit failed: %w", err)
	}
	return code, nil
}

// checkSafety refuses to commit into a non-temporary repository while tests
// are running.
func (c *Client) checkSafety(ctx context.Context) error {
	if os.Getenv("GO_TEST_ENV") != "1" {
		return nil
	}

	dir := c.runner.Dir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("SAFETY: cannot resolve working directory: %w", err)
		}
		dir = cwd
	}
	if isTempPath(dir) || !c.IsGitRepository(ctx) {
		return nil
	}
	return fmt.Errorf("SAFETY: refusing to commit in %s during tests", dir)
}

func isTempPath(dir string) bool {
	return strings.HasPrefix(dir, os.TempDir()) ||
		strings.Contains(dir, "/tmp/") ||
		strings.Contains(dir, "\\Temp\\") ||
		strings.Contains(dir, "autocommit_git_test")
}
