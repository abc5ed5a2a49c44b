package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/samzong/autocommit/internal/formatter"
	"github.com/samzong/autocommit/internal/git"
	"github.com/samzong/autocommit/internal/gitcmd"
	"github.com/samzong/autocommit/internal/ui"
)

var ErrNoChanges = errors.New("no changes staged")

const (
	NoChangesNotice = "No changes staged. Use 'git add' to stage files before invoking autocommit."
	BinaryNotice    = "autocommit does not support binary files"
	// BinaryPlaceholder is offered instead of a generated message when the
	// staged diff is not text. Git strips it as a comment line.
	BinaryPlaceholder = "# autocommit does not support binary files. " +
		"Please enter a commit message manually or unstage any binary files."
)

type CommitOptions struct {
	PrintMessage bool
	Edit         bool
	// Interactive reports whether stdin is a terminal git can open an editor on.
	Interactive bool
	Stdin       io.Reader
	OutWriter   io.Writer
	ErrWriter   io.Writer
	Logger      zerolog.Logger
}

type CommitFlow struct {
	git       GitClient
	generator MessageGenerator
	opts      CommitOptions
}

func NewCommitFlow(git GitClient, generator MessageGenerator, opts CommitOptions) *CommitFlow {
	return &CommitFlow{
		git:       git,
		generator: generator,
		opts:      opts,
	}
}

// Run generates a message for the staged changes and prints or commits it.
// The returned code is the process exit code: git's own code in commit mode,
// zero otherwise. ErrNoChanges is returned when nothing is staged.
func (f *CommitFlow) Run(ctx context.Context) (int, error) {
	message, err := f.buildMessage(ctx)
	if errors.Is(err, ErrNoChanges) {
		return 0, err
	}
	if err != nil {
		return 1, err
	}

	if f.opts.PrintMessage {
		fmt.Fprintln(f.opts.OutWriter, message)
		return 0, nil
	}
	return f.performCommit(ctx, message)
}

func (f *CommitFlow) buildMessage(ctx context.Context) (string, error) {
	message, err := f.generate(ctx)
	if errors.Is(err, git.ErrBinaryDiff) {
		fmt.Fprintln(f.opts.ErrWriter, BinaryNotice)
		return BinaryPlaceholder, nil
	}
	return message, err
}

func (f *CommitFlow) generate(ctx context.Context) (string, error) {
	staged, err := f.git.StagedDiff(ctx, false)
	if err != nil {
		return "", fmt.Errorf("failed to get git diff: %w", err)
	}
	if staged == "" {
		return "", ErrNoChanges
	}

	diff, err := f.git.StagedDiff(ctx, true)
	if err != nil {
		return "", fmt.Errorf("failed to get git diff: %w", err)
	}
	f.opts.Logger.Debug().
		Int("diff_chars", len(staged)).
		Int("normalized_chars", len(diff)).
		Msg("read staged diff")

	sp := ui.NewSpinner("Generating commit message...", f.opts.ErrWriter)
	sp.Start()
	message, err := f.generator.GenerateCommitMessage(ctx, diff)
	sp.Stop()

	if err != nil {
		return "", fmt.Errorf("failed to generate commit message: %w", err)
	}
	return message, nil
}

func (f *CommitFlow) performCommit(ctx context.Context, message string) (int, error) {
	edit := f.opts.Edit
	if edit && !f.opts.Interactive {
		f.opts.Logger.Warn().Msg("stdin is not a terminal, committing without opening the editor")
		edit = false
	}

	streams := gitcmd.Streams{
		Stdin:  f.opts.Stdin,
		Stdout: f.opts.OutWriter,
		Stderr: f.opts.ErrWriter,
	}
	code, err := f.git.Commit(ctx, formatter.FormatCommitMessage(message), edit, streams)
	if err != nil {
		return 1, fmt.Errorf("failed to commit changes: %w", err)
	}
	f.opts.Logger.Debug().Int("exit_code", code).Msg("git commit finished")
	return code, nil
}
