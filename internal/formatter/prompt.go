package formatter

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/samzong/autocommit/internal/stringsutil"
	"gopkg.in/yaml.v3"
)

const (
	DiffPrompt   = "Generate a succinct summary of the following code changes:"
	CommitPrompt = "Using no more than 50 characters, " +
		"generate a descriptive commit message from these summaries:"

	// PromptSlack is how far past the cutoff a transmitted prompt may run.
	PromptSlack = 100
)

// Prompts are the instruction prefixes placed in front of a diff segment and
// in front of the joined summaries.
type Prompts struct {
	Summary string `yaml:"summary_prompt"`
	Commit  string `yaml:"commit_prompt"`
}

// DefaultPrompts returns the built-in instruction prefixes.
func DefaultPrompts() Prompts {
	return Prompts{Summary: DiffPrompt, Commit: CommitPrompt}
}

// LoadPrompts reads prompt overrides from a YAML file. Keys left empty keep
// their built-in value; an empty path returns the defaults.
func LoadPrompts(path string) (Prompts, error) {
	prompts := DefaultPrompts()
	if path == "" {
		return prompts, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return prompts, fmt.Errorf("unable to read prompt file %s: %w", path, err)
	}

	var override Prompts
	if err := yaml.Unmarshal(content, &override); err != nil {
		return prompts, fmt.Errorf("unable to parse prompt file %s: %w", path, err)
	}
	if strings.TrimSpace(override.Summary) == "" && strings.TrimSpace(override.Commit) == "" {
		return prompts, errors.New("prompt file " + path + " sets neither summary_prompt nor commit_prompt")
	}

	if s := strings.TrimSpace(override.Summary); s != "" {
		prompts.Summary = s
	}
	if s := strings.TrimSpace(override.Commit); s != "" {
		prompts.Commit = s
	}
	return prompts, nil
}

// SummaryPrompt frames one diff segment for summarization.
func (p Prompts) SummaryPrompt(segment string) string {
	return fmt.Sprintf("%s\n\n%s\n\n", p.Summary, segment)
}

// CommitMessagePrompt frames the joined segment summaries.
func (p Prompts) CommitMessagePrompt(summaries string) string {
	return fmt.Sprintf("%s\n\n%s\n\n", p.Commit, summaries)
}

// TruncatePrompt caps a prompt at cutoff+PromptSlack characters, which only
// bites for segments holding a single unit larger than the cutoff.
func TruncatePrompt(prompt string, cutoff int) string {
	return stringsutil.TruncateRunes(prompt, cutoff+PromptSlack)
}
