package search

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"
)

// maxLine bounds a single markdown line while flattening.
const maxLine = 4 * 1024 * 1024

// FlattenMarkdown rewrites markdown so that every table row and every
// non-blank line becomes a standalone paragraph. Separator rows are dropped
// and cells are joined with single spaces. The result has no leading blank
// line and ends with exactly one newline; empty input yields nil.
func FlattenMarkdown(r io.Reader) ([]byte, error) {
	var b strings.Builder
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	emit := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		b.WriteString(s)
		b.WriteString("\n\n")
	}

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if cells, ok := tableRow(line); ok {
			emit(strings.Join(cells, " "))
			continue
		}
		emit(line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if b.Len() == 0 {
		return nil, nil
	}
	return []byte(strings.TrimRight(b.String(), "\n") + "\n"), nil
}

// tableRow reports whether line is a "| a | b |" row and returns its
// non-empty cells. Separator rows ("| --- | :-: |") return ok with no cells.
func tableRow(line string) ([]string, bool) {
	if len(line) < 2 || !strings.HasPrefix(line, "|") || !strings.HasSuffix(line, "|") {
		return nil, false
	}
	cols := strings.Split(strings.Trim(line, "|"), "|")
	out := make([]string, 0, len(cols))
	sep := true
	for _, c := range cols {
		cell := strings.TrimSpace(c)
		if strings.Trim(cell, ":- ") != "" {
			sep = false
		}
		if cell != "" {
			out = append(out, cell)
		}
	}
	if sep {
		return nil, true
	}
	return out, true
}

// SplitParagraphs splits text on blank lines, trimming each paragraph and
// dropping empty ones.
func SplitParagraphs(text []byte) []string {
	text = bytes.ReplaceAll(text, []byte("\r\n"), []byte("\n"))
	var (
		out []string
		cur []string
	)
	flush := func() {
		if len(cur) == 0 {
			return
		}
		p := strings.TrimSpace(strings.Join(cur, "\n"))
		if p != "" {
			out = append(out, p)
		}
		cur = cur[:0]
	}
	for _, line := range strings.Split(string(text), "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return out
}

// LoadMarkdown reads the markdown file at path, flattens it, and returns its
// paragraphs.
func LoadMarkdown(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	flat, err := FlattenMarkdown(f)
	if err != nil {
		return nil, err
	}
	return SplitParagraphs(flat), nil
}
