package formatter

import "strings"

// FormatCommitMessage prepares a generated message for git commit: backticks
// are removed and surrounding whitespace trimmed.
func FormatCommitMessage(message string) string {
	return strings.TrimSpace(strings.ReplaceAll(message, "`", ""))
}
