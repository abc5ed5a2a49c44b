// Package guidelines loads the commit style guidelines that are sent as the
// system message of every model call.
package guidelines

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/russross/blackfriday/v2"
)

// FileName is the guidelines file looked up next to the executable.
const FileName = "commit-message-guidelines.md"

//go:embed commit-message-guidelines.md
var bundled []byte

var (
	ErrNotFound    = errors.New("guidelines file does not exist")
	ErrIsDirectory = errors.New("guidelines path is a directory")
)

// Load reads the guidelines markdown at path and returns its plain text.
// An empty path selects the file bundled with the program: the copy next to
// the executable when present, the embedded copy otherwise.
func Load(path string) (string, error) {
	if path == "" {
		return loadDefault()
	}

	if err := CheckPath(path); err != nil {
		return "", err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read guidelines %s: %w", path, err)
	}
	return ToText(content), nil
}

// CheckPath verifies that path names an existing file that is not a directory.
func CheckPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("failed to stat guidelines %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}
	return nil
}

func loadDefault() (string, error) {
	if path, ok := colocatedPath(); ok {
		return Load(path)
	}
	return ToText(bundled), nil
}

func colocatedPath() (string, bool) {
	exe, err := os.Executable()
	if err != nil {
		return "", false
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	path := filepath.Join(filepath.Dir(exe), FileName)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// ToText renders markdown as plain text: one block per paragraph, heading,
// list item or code block, separated by blank lines, with inline markup
// removed.
func ToText(markdown []byte) string {
	md := blackfriday.New(blackfriday.WithExtensions(blackfriday.CommonExtensions))
	root := md.Parse(markdown)

	var blocks []string
	var current strings.Builder
	flush := func() {
		if text := strings.TrimSpace(current.String()); text != "" {
			blocks = append(blocks, text)
		}
		current.Reset()
	}

	root.Walk(func(node *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		switch node.Type {
		case blackfriday.Paragraph, blackfriday.Heading, blackfriday.Item, blackfriday.TableRow:
			if !entering {
				flush()
			}
		case blackfriday.TableCell:
			if !entering {
				current.WriteByte(' ')
			}
		case blackfriday.CodeBlock, blackfriday.HTMLBlock:
			flush()
			current.Write(node.Literal)
			flush()
		case blackfriday.Text:
			current.WriteString(strings.ReplaceAll(string(node.Literal), "\n", " "))
		case blackfriday.Code, blackfriday.HTMLSpan:
			current.Write(node.Literal)
		case blackfriday.Softbreak:
			current.WriteByte(' ')
		case blackfriday.Hardbreak:
			current.WriteByte('\n')
		}
		return blackfriday.GoToNext
	})
	flush()

	return strings.Join(blocks, "\n\n")
}
