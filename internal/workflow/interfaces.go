// Package workflow provides the commit workflow orchestration logic.
package workflow

import (
	"context"

	"github.com/samzong/autocommit/internal/gitcmd"
)

// GitClient abstracts git operations for testability.
type GitClient interface {
	StagedDiff(ctx context.Context, ignoreWhitespace bool) (string, error)
	Commit(ctx context.Context, message string, edit bool, streams gitcmd.Streams) (int, error)
}

// MessageGenerator turns a whitespace-insensitive staged diff into a commit
// message.
type MessageGenerator interface {
	GenerateCommitMessage(ctx context.Context, diff string) (string, error)
}
