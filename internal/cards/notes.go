package cards

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/matze/zk-spaced/internal/spacedrep"
)

// DefaultPattern matches every markdown note below the notes directory.
const DefaultPattern = "**/*.md"

// frontmatter holds the note metadata we care about.
type frontmatter struct {
	Title  string `yaml:"title"`
	Spaced *bool  `yaml:"spaced"`
}

// ScanDir reads every note under dir matching pattern, in lexical path order.
// The identifier is the slash-separated path relative to dir. Notes whose
// frontmatter sets `spaced: false` are skipped.
func ScanDir(dir, pattern string) ([]spacedrep.Item, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &MalformedError{Source: dir, Err: err}
	}
	if !info.IsDir() {
		return nil, &MalformedError{Source: dir, Err: errors.New("not a directory")}
	}
	return scanFS(os.DirFS(dir), dir, pattern)
}

func scanFS(fsys fs.FS, source, pattern string) ([]spacedrep.Item, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, &MalformedError{Source: source, Err: fmt.Errorf("invalid pattern %q", pattern)}
	}

	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, &MalformedError{Source: source, Err: err}
	}
	sort.Strings(matches)

	items := make([]spacedrep.Item, 0, len(matches))
	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, &MalformedError{Source: source, Err: err}
		}
		item, keep, err := parseNote(name, data)
		if err != nil {
			return nil, &MalformedError{Source: path.Join(source, name), Err: err}
		}
		if keep {
			items = append(items, item)
		}
	}
	return items, nil
}

// parseNote splits a note into frontmatter and content and derives the card.
func parseNote(name string, data []byte) (spacedrep.Item, bool, error) {
	var meta frontmatter
	content := data

	if bytes.HasPrefix(data, []byte("---\n")) || bytes.HasPrefix(data, []byte("---\r\n")) {
		rest := data[3:]
		parts := bytes.SplitN(rest, []byte("\n---"), 2)
		if len(parts) == 1 {
			return spacedrep.Item{}, false, errors.New("frontmatter started but no closing delimiter found")
		}
		if err := yaml.Unmarshal(parts[0], &meta); err != nil {
			return spacedrep.Item{}, false, fmt.Errorf("failed to parse frontmatter: %w", err)
		}
		content = parts[1]
		// Drop the rest of the closing delimiter line.
		if i := bytes.IndexByte(content, '\n'); i >= 0 {
			content = content[i+1:]
		} else {
			content = nil
		}
	}

	if meta.Spaced != nil && !*meta.Spaced {
		return spacedrep.Item{}, false, nil
	}

	body := strings.TrimSpace(string(content))
	title := meta.Title
	if title == "" {
		title, body = headingTitle(body)
	}
	if title == "" {
		title = strings.TrimSuffix(path.Base(name), path.Ext(name))
	}

	return spacedrep.Item{ID: name, Title: title, Body: body}, true, nil
}

// headingTitle takes the first level-one heading as the title and returns
// the body without it. Headings inside code blocks do not count.
func headingTitle(body string) (string, string) {
	src := []byte(body)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var heading *ast.Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if h, ok := n.(*ast.Heading); ok && entering && h.Level == 1 {
			heading = h
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if heading == nil || heading.Lines().Len() == 0 {
		return "", body
	}

	lines := heading.Lines()
	title := strings.TrimSpace(string(lines.Value(src)))

	lineStart := bytes.LastIndexByte(src[:lines.At(0).Start], '\n') + 1
	lineEnd := endOfLine(src, lines.At(lines.Len()-1).Stop)
	// A setext heading also owns its underline.
	if !bytes.HasPrefix(bytes.TrimLeft(src[lineStart:], " "), []byte("#")) {
		lineEnd = endOfLine(src, min(lineEnd+1, len(src)))
	}

	return title, strings.TrimSpace(string(src[:lineStart]) + string(src[lineEnd:]))
}

// endOfLine returns the offset just past the newline ending the line that
// contains pos.
func endOfLine(src []byte, pos int) int {
	if pos > 0 && pos <= len(src) && src[pos-1] == '\n' {
		return pos
	}
	if pos >= len(src) {
		return len(src)
	}
	if i := bytes.IndexByte(src[pos:], '\n'); i >= 0 {
		return pos + i + 1
	}
	return len(src)
}
