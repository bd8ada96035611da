package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"apidoc/internal/fragment"
)

// Extractor locates @openapi annotations in source files, choosing the
// grammar from the file extension.
type Extractor struct {
	byExt map[string]*language
}

type language struct {
	langExtractor LanguageExtractor
	query         *sitter.Query
}

var registry = []struct {
	ext  LanguageExtractor
	exts []string
}{
	{&GoExtractor{}, []string{".go"}},
	{&JavaScriptExtractor{}, []string{".js", ".jsx", ".mjs", ".cjs"}},
	{&TypeScriptExtractor{}, []string{".ts", ".mts", ".cts"}},
	{&TypeScriptExtractor{TSX: true}, []string{".tsx"}},
}

// Extensions lists the file extensions an Extractor understands, sorted.
func Extensions() []string {
	var out []string
	for _, r := range registry {
		out = append(out, r.exts...)
	}
	slices.Sort(out)
	return out
}

// NewExtractor creates an extractor for every supported language.
func NewExtractor() (*Extractor, error) {
	e := &Extractor{byExt: make(map[string]*language)}
	for _, r := range registry {
		query, err := sitter.NewQuery([]byte(r.ext.GetQuery()), r.ext.GetLanguage())
		if err != nil {
			return nil, fmt.Errorf("failed to create %s query: %w", r.ext.Name(), err)
		}
		lang := &language{langExtractor: r.ext, query: query}
		for _, ext := range r.exts {
			e.byExt[ext] = lang
		}
	}
	return e, nil
}

// Supports reports whether path has an extension the extractor can parse.
func (e *Extractor) Supports(path string) bool {
	_, ok := e.byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extract returns the annotations of one file in order of appearance.
// Files with an unsupported extension have no annotations.
func (e *Extractor) Extract(path string, content []byte) ([]fragment.Raw, error) {
	lang, ok := e.byExt[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, nil
	}
	blocks, err := e.blocks(lang, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", path, err)
	}
	var raws []fragment.Raw
	for _, b := range blocks {
		raws = append(raws, Annotations(path, b)...)
	}
	return raws, nil
}

// blocks returns the comment blocks of content in source order.
func (e *Extractor) blocks(lang *language, content []byte) ([]Block, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(lang.langExtractor.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}

	qc := sitter.NewQueryCursor()
	qc.Exec(lang.query, tree.RootNode())

	var blocks []Block
	var prev *sitter.Node // last // comment of the open block
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			text := strings.TrimRight(c.Node.Content(content), "\r")
			start := c.Node.StartPoint()
			if strings.HasPrefix(text, "//") {
				line := Line{
					Text:   strings.TrimPrefix(text, "//"),
					Row:    int(start.Row) + 1,
					Column: int(start.Column) + 2,
				}
				if prev != nil && adjacent(prev, c.Node) {
					last := &blocks[len(blocks)-1]
					last.Lines = append(last.Lines, line)
				} else {
					blocks = append(blocks, Block{Lines: []Line{line}})
				}
				prev = c.Node
				continue
			}
			prev = nil
			blocks = append(blocks, blockComment(text, int(start.Row)+1, int(start.Column)))
		}
	}
	return blocks, nil
}

// adjacent reports whether next continues the line comment run ending in prev.
func adjacent(prev, next *sitter.Node) bool {
	return next.StartPoint().Row == prev.EndPoint().Row+1 &&
		next.StartPoint().Column == prev.StartPoint().Column
}

// blockComment splits a /* */ comment into lines. In /** */ comments the
// leading asterisk of every line is removed too.
func blockComment(text string, row, column int) Block {
	text = strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
	column += 2
	lines := strings.Split(text, "\n")

	starred := len(lines) > 1
	for _, l := range lines[1:] {
		t := strings.TrimSpace(l)
		if t != "" && !strings.HasPrefix(t, "*") {
			starred = false
			break
		}
	}

	var b Block
	for i, l := range lines {
		l = strings.TrimRight(l, "\r")
		col := 0
		if i == 0 {
			col = column
			if strings.HasPrefix(l, "*") {
				l = l[1:]
				col++
			}
		} else if starred {
			trimmed := strings.TrimLeft(l, " \t")
			if strings.HasPrefix(trimmed, "*") {
				col = len(l) - len(trimmed) + 1
				l = trimmed[1:]
			}
		}
		b.Lines = append(b.Lines, Line{Text: l, Row: row + i, Column: col})
	}
	return b
}
