package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/samzong/autocommit/internal/formatter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	system string
	prompt string
}

type fakeCompleter struct {
	mu       sync.Mutex
	calls    []call
	complete func(ctx context.Context, prompt string) (string, error)
}

func (f *fakeCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{system: system, prompt: prompt})
	f.mu.Unlock()
	if f.complete != nil {
		return f.complete(ctx, prompt)
	}
	if strings.HasPrefix(prompt, formatter.CommitPrompt) {
		return "feat: summarize", nil
	}
	return "summary", nil
}

func (f *fakeCompleter) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func TestGenerateCommitMessage_EmptyDiff(t *testing.T) {
	fake := &fakeCompleter{}
	s := New(fake, "guidelines", 10000)

	msg, err := s.GenerateCommitMessage(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "style: Fix whitespace", msg)
	assert.Empty(t, fake.Calls(), "no model call for whitespace-only changes")
}

func TestGenerateCommitMessage_SingleSegment(t *testing.T) {
	raw := "diff --git a/a.txt b/a.txt\n--- a/a.txt\n+++ b/a.txt\n@@ -1 +1 @@\n-Hello\n+Hello, World!"
	fake := &fakeCompleter{}
	s := New(fake, "GUIDELINES", 10000)

	msg, err := s.GenerateCommitMessage(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "feat: summarize", msg)

	calls := fake.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, formatter.DiffPrompt+"\n\n\n"+raw+"\n\n", calls[0].prompt)
	assert.Equal(t, formatter.CommitPrompt+"\n\nsummary\n\n", calls[1].prompt)
	for _, c := range calls {
		assert.Equal(t, "GUIDELINES", c.system)
	}
}

func TestSummarizeAll_PreservesSegmentOrder(t *testing.T) {
	segments := []string{"seg-0", "seg-1", "seg-2", "seg-3"}
	fake := &fakeCompleter{
		complete: func(_ context.Context, prompt string) (string, error) {
			if strings.HasPrefix(prompt, formatter.CommitPrompt) {
				return prompt, nil
			}
			for i, seg := range segments {
				if strings.Contains(prompt, seg) {
					// Later segments finish first.
					time.Sleep(time.Duration(len(segments)-i) * 10 * time.Millisecond)
					return fmt.Sprintf("summary-%d", i), nil
				}
			}
			return "", errors.New("unexpected prompt")
		},
	}
	s := New(fake, "", 10000)

	final, err := s.SummarizeAll(context.Background(), segments)
	require.NoError(t, err)
	assert.Equal(t, formatter.CommitPrompt+"\n\nsummary-0\nsummary-1\nsummary-2\nsummary-3\n\n", final)
	assert.Len(t, fake.Calls(), len(segments)+1)
}

func TestSummarizeAll_RunsConcurrently(t *testing.T) {
	const n = 4
	var wg sync.WaitGroup
	wg.Add(n)
	fake := &fakeCompleter{
		complete: func(ctx context.Context, prompt string) (string, error) {
			if strings.HasPrefix(prompt, formatter.CommitPrompt) {
				return "done", nil
			}
			// Every call waits for all others to start.
			wg.Done()
			done := make(chan struct{})
			go func() { wg.Wait(); close(done) }()
			select {
			case <-done:
				return "ok", nil
			case <-time.After(5 * time.Second):
				return "", errors.New("segments were not summarized concurrently")
			}
		},
	}

	segments := make([]string, n)
	for i := range segments {
		segments[i] = fmt.Sprintf("segment %d", i)
	}
	msg, err := New(fake, "", 10000).SummarizeAll(context.Background(), segments)
	require.NoError(t, err)
	assert.Equal(t, "done", msg)
}

func TestSummarizeAll_FirstErrorFailsBatch(t *testing.T) {
	boom := errors.New("model unavailable")
	fake := &fakeCompleter{
		complete: func(ctx context.Context, prompt string) (string, error) {
			if strings.Contains(prompt, "bad") {
				return "", boom
			}
			if strings.HasPrefix(prompt, formatter.CommitPrompt) {
				t.Error("final call must not run after a failed segment")
			}
			return "ok", nil
		},
	}

	_, err := New(fake, "", 10000).SummarizeAll(context.Background(), []string{"good", "bad", "good too"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "segment 2 of 3")
}

func TestSummarizeAll_FinalCallError(t *testing.T) {
	boom := errors.New("endpoint down")
	fake := &fakeCompleter{
		complete: func(_ context.Context, prompt string) (string, error) {
			if strings.HasPrefix(prompt, formatter.CommitPrompt) {
				return "", boom
			}
			return "ok", nil
		},
	}

	_, err := New(fake, "", 10000).SummarizeAll(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, boom)
}

func TestSummarizeAll_NoSegments(t *testing.T) {
	_, err := New(&fakeCompleter{}, "", 10).SummarizeAll(context.Background(), nil)
	assert.ErrorIs(t, err, errNoSegments)
}

func TestSummarizeSegment_TruncatesOversizedPrompt(t *testing.T) {
	fake := &fakeCompleter{}
	s := New(fake, "", 200)

	_, err := s.SummarizeSegment(context.Background(), strings.Repeat("+", 1000))
	require.NoError(t, err)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 300, utf8.RuneCountInString(calls[0].prompt))
	assert.True(t, strings.HasPrefix(calls[0].prompt, formatter.DiffPrompt))
}

func TestWithPrompts(t *testing.T) {
	fake := &fakeCompleter{
		complete: func(context.Context, string) (string, error) { return "x", nil },
	}
	prompts := formatter.Prompts{Summary: "SUM:", Commit: "MSG:"}
	s := New(fake, "", 10000, WithPrompts(prompts))

	_, err := s.SummarizeAll(context.Background(), []string{"diff"})
	require.NoError(t, err)

	calls := fake.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "SUM:\n\ndiff\n\n", calls[0].prompt)
	assert.Equal(t, "MSG:\n\nx\n\n", calls[1].prompt)
}
