// Package summarizer turns a staged diff into a commit message: the diff is
// cut into segments, every segment is summarized in parallel, and the joined
// summaries are condensed into one message.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samzong/autocommit/internal/diff"
	"github.com/samzong/autocommit/internal/formatter"
	"golang.org/x/sync/errgroup"
)

// WhitespaceMessage is used when only whitespace changes are staged.
const WhitespaceMessage = "style: Fix whitespace"

var errNoSegments = errors.New("no diff segments to summarize")

// Completer answers a prompt conditioned on a system message.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Summarizer generates commit messages with a Completer.
type Summarizer struct {
	llm        Completer
	guidelines string
	cutoff     int
	prompts    formatter.Prompts
	logger     zerolog.Logger
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithPrompts replaces the built-in instruction prefixes.
func WithPrompts(prompts formatter.Prompts) Option {
	return func(s *Summarizer) {
		s.prompts = prompts
	}
}

// WithLogger sets the logger for the summarizer.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Summarizer) {
		s.logger = logger
	}
}

// New creates a Summarizer. guidelines is sent as the system message of every
// call and cutoff is the segment budget in characters.
func New(llm Completer, guidelines string, cutoff int, opts ...Option) *Summarizer {
	s := &Summarizer{
		llm:        llm,
		guidelines: guidelines,
		cutoff:     cutoff,
		prompts:    formatter.DefaultPrompts(),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateCommitMessage summarizes a whitespace-insensitive staged diff into
// a commit message. An empty diff means only whitespace changed and yields
// WhitespaceMessage without calling the model.
func (s *Summarizer) GenerateCommitMessage(ctx context.Context, rawDiff string) (string, error) {
	if rawDiff == "" {
		s.logger.Debug().Msg("only whitespace changes staged")
		return WhitespaceMessage, nil
	}

	files := diff.Parse(rawDiff)
	segments := diff.Assemble(files, s.cutoff)
	s.logger.Debug().
		Strs("files", diff.Files(files)).
		Int("segments", len(segments)).
		Int("cutoff", s.cutoff).
		Msg("assembled diff segments")

	return s.SummarizeAll(ctx, segments)
}

// SummarizeSegment asks the model for a summary of one diff segment.
func (s *Summarizer) SummarizeSegment(ctx context.Context, segment string) (string, error) {
	return s.complete(ctx, s.prompts.SummaryPrompt(segment))
}

// SummarizeAll summarizes every segment concurrently, joins the summaries in
// segment order and condenses them into a commit message. The first failure
// cancels the remaining calls and fails the whole batch.
func (s *Summarizer) SummarizeAll(ctx context.Context, segments []string) (string, error) {
	if len(segments) == 0 {
		return "", errNoSegments
	}

	start := time.Now()
	summaries := make([]string, len(segments))
	g, gctx := errgroup.WithContext(ctx)
	for i, segment := range segments {
		g.Go(func() error {
			summary, err := s.SummarizeSegment(gctx, segment)
			if err != nil {
				return fmt.Errorf("failed to summarize segment %d of %d: %w", i+1, len(segments), err)
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	s.logger.Debug().
		Int("segments", len(segments)).
		Dur("elapsed", time.Since(start)).
		Msg("summarized diff segments")

	message, err := s.complete(ctx, s.prompts.CommitMessagePrompt(strings.Join(summaries, "\n")))
	if err != nil {
		return "", fmt.Errorf("failed to generate commit message from summaries: %w", err)
	}
	return message, nil
}

func (s *Summarizer) complete(ctx context.Context, prompt string) (string, error) {
	return s.llm.Complete(ctx, s.guidelines, formatter.TruncatePrompt(prompt, s.cutoff))
}
