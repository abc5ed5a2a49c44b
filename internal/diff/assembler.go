package diff

import (
	"fmt"
	"unicode/utf8"
)

// Assemble packs file diffs into segments of at most cutoff characters.
//
// Each file's header travels with its first hunk. When a later hunk does not
// fit in the current segment a new segment is started and the file header is
// prepended to it, so every segment names the file its hunks belong to.
// Segments are shared across files: a segment may end with one file and
// begin the next.
//
// A unit that is larger than cutoff on its own is emitted as a single
// oversized segment; hunks are never split.
func Assemble(files []FileDiff, cutoff int) []string {
	if cutoff <= 0 {
		panic(fmt.Sprintf("diff: cutoff must be positive, got %d", cutoff))
	}

	a := &assembler{cutoff: cutoff, segments: []string{""}, lengths: []int{0}}
	for _, file := range files {
		if len(file.Hunks) == 0 {
			a.tryAppend(file.Header)
			continue
		}

		a.tryAppend(file.Header + file.Hunks[0])
		for _, hunk := range file.Hunks[1:] {
			if !a.tryAppend(hunk) {
				a.prependToLast(file.Header)
			}
		}
	}

	// The initial segment stays empty when the very first unit overflowed.
	if len(a.segments) > 1 && a.lengths[0] == 0 {
		return a.segments[1:]
	}
	return a.segments
}

type assembler struct {
	cutoff   int
	segments []string
	lengths  []int // rune counts, parallel to segments
}

func (a *assembler) tryAppend(chunk string) bool {
	last := len(a.segments) - 1
	n := utf8.RuneCountInString(chunk)
	if a.lengths[last]+n <= a.cutoff {
		a.segments[last] += "\n" + chunk
		a.lengths[last] += n + 1
		return true
	}

	a.segments = append(a.segments, chunk)
	a.lengths = append(a.lengths, n)
	return false
}

func (a *assembler) prependToLast(header string) {
	last := len(a.segments) - 1
	a.segments[last] = header + a.segments[last]
	a.lengths[last] += utf8.RuneCountInString(header)
}
