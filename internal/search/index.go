// Package search ranks documents against a free-text query. An Index is built
// from a snapshot of an index's documents and is immutable afterwards, so it
// is safe for concurrent use.
//
// Scoring uses Jaccard similarity between the query token set and each
// document's token set: score = |Q ∩ D| / |Q ∪ D|. Ties are broken by shorter
// text, then by ID, so results are deterministic.
package search

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Document is the input unit of an Index.
type Document struct {
	ID   string
	Text string
}

// Result is a ranked document with its similarity score.
type Result struct {
	ID      string  `json:"id"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// Index is the minimal interface implemented by all search indices.
type Index interface {
	TopK(query string, k int) []Result
	Len() int
}

// DefaultK is used when TopK is called with k <= 0.
const DefaultK = 3

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	stopwords map[string]struct{}
}

func defaultConfig() config {
	return config{}
}

// WithStopwords drops the given words from documents and queries.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			w = fold(strings.TrimSpace(w))
			if w != "" {
				m[w] = struct{}{}
			}
		}
		if len(m) > 0 {
			c.stopwords = m
		}
	}
}

// ----------------------------------------------------------------------------
// Implementation

type doc struct {
	id       string
	text     string
	tokens   map[string]struct{}
	lenRunes int
}

type index struct {
	cfg  config
	docs []doc
}

// New builds an Index over docs. Documents with no tokens are skipped.
func New(docs []Document, opts ...Option) Index {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	out := make([]doc, 0, len(docs))
	for _, d := range docs {
		t := strings.TrimSpace(normalizeWhitespace(d.Text))
		if t == "" {
			continue
		}
		toks := tokenize(t, cfg.stopwords)
		if len(toks) == 0 {
			continue
		}
		out = append(out, doc{id: d.ID, text: t, tokens: toks, lenRunes: utf8.RuneCountInString(t)})
	}
	return &index{cfg: cfg, docs: out}
}

// Len returns the number of indexed documents.
func (i *index) Len() int { return len(i.docs) }

// TopK returns up to k best-matching documents by Jaccard similarity.
func (i *index) TopK(q string, k int) []Result {
	if len(i.docs) == 0 || strings.TrimSpace(q) == "" {
		return nil
	}
	if k <= 0 {
		k = DefaultK
	}
	qTokens := tokenize(q, i.cfg.stopwords)
	if len(qTokens) == 0 {
		return nil
	}
	qLen := len(qTokens)

	type scored struct {
		d     *doc
		score float64
	}

	buf := make([]scored, 0, min(k*4, len(i.docs)))
	for n := range i.docs {
		d := &i.docs[n]
		over := overlap(qTokens, d.tokens)
		if over == 0 {
			continue
		}
		union := float64(qLen + len(d.tokens) - over)
		buf = append(buf, scored{d: d, score: float64(over) / union})
	}
	if len(buf) == 0 {
		return nil
	}

	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].score != buf[b].score {
			return buf[a].score > buf[b].score
		}
		if buf[a].d.lenRunes != buf[b].d.lenRunes {
			return buf[a].d.lenRunes < buf[b].d.lenRunes
		}
		return buf[a].d.id < buf[b].d.id
	})

	if k > len(buf) {
		k = len(buf)
	}
	out := make([]Result, k)
	for n := 0; n < k; n++ {
		out[n] = Result{ID: buf[n].d.id, Snippet: buf[n].d.text, Score: buf[n].score}
	}
	return out
}

// ----------------------------------------------------------------------------
// Helpers

var wordRE = regexp.MustCompile(`\p{L}+\p{N}*`)

// fold applies Unicode case folding so "Straße" and "STRASSE" match.
func fold(s string) string {
	return cases.Fold().String(s)
}

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	words := wordRE.FindAllString(fold(s), -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if stop != nil {
			if _, skip := stop[w]; skip {
				continue
			}
		}
		out[w] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := 0
	if len(a) > len(b) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

func normalizeWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\r' {
			if !prevSpace {
				b.WriteByte(' ')
				prevSpace = true
			}
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
