// Package diff splits staged git diffs into per-file, per-hunk pieces and
// repacks them into prompt-sized segments.
package diff

import (
	"regexp"
	"strings"

	"github.com/samzong/autocommit/internal/stringsutil"
)

const (
	// FileMarker starts every file block after the first one.
	FileMarker = "\ndiff"
	// HunkMarker starts every hunk inside a file block.
	HunkMarker = "\n@@"
)

var headerPathRe = regexp.MustCompile(`(?m)^diff --git a/(.+) b/(.+)$`)

// FileDiff is one file's header and its hunks in original order.
type FileDiff struct {
	Header string
	Hunks  []string
}

// Parse splits a raw unified diff into file diffs. Every piece after the
// first keeps its leading FileMarker and every hunk keeps its leading
// HunkMarker, so joining the pieces back yields the input unchanged.
//
// The input is not validated; text that does not come from git diff is
// split on a best-effort basis.
func Parse(raw string) []FileDiff {
	pieces := strings.Split(raw, FileMarker)
	files := make([]FileDiff, 0, len(pieces))
	for i, piece := range pieces {
		if i > 0 {
			piece = FileMarker + piece
		}
		files = append(files, parseFile(piece))
	}
	return files
}

func parseFile(piece string) FileDiff {
	parts := strings.Split(piece, HunkMarker)
	file := FileDiff{Header: parts[0]}
	if len(parts) == 1 {
		return file
	}

	file.Hunks = make([]string, 0, len(parts)-1)
	for _, hunk := range parts[1:] {
		file.Hunks = append(file.Hunks, HunkMarker+hunk)
	}
	return file
}

// Files returns the destination paths named by the file headers,
// deduplicated in first-seen order.
func Files(files []FileDiff) []string {
	var paths []string
	for _, file := range files {
		m := headerPathRe.FindStringSubmatch(file.Header)
		if m == nil {
			continue
		}
		paths = append(paths, strings.Trim(m[2], "\""))
	}
	return stringsutil.UniqueStrings(paths)
}
