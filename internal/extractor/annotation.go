package extractor

import (
	"strings"

	"apidoc/internal/diag"
	"apidoc/internal/fragment"
)

// Marker starts an annotation header line: "@openapi <kind> [first body line]".
const Marker = "@openapi"

const tabWidth = 4

// Annotations splits a comment block into raw annotations. Each header opens
// an annotation whose body runs until the next header or the end of the block.
// Comment text before the first header is ignored.
func Annotations(path string, b Block) []fragment.Raw {
	var out []fragment.Raw
	var cur *pending
	for _, l := range b.Lines {
		trimmed := strings.TrimLeft(l.Text, " \t")
		if !isHeader(trimmed) {
			if cur != nil {
				cur.lines = append(cur.lines, l)
			}
			continue
		}
		if cur != nil {
			out = append(out, cur.raw())
		}
		kind, first := splitKind(strings.TrimSpace(trimmed[len(Marker):]))
		cur = &pending{
			kind:  kind,
			first: first,
			origin: diag.Location{
				File:   path,
				Line:   l.Row,
				Column: l.Column + len(l.Text) - len(trimmed) + 1,
			},
		}
	}
	if cur != nil {
		out = append(out, cur.raw())
	}
	return out
}

func isHeader(s string) bool {
	if !strings.HasPrefix(s, Marker) {
		return false
	}
	rest := s[len(Marker):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}

// splitKind separates the declared kind from the text following it.
func splitKind(s string) (kind, rest string) {
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

type pending struct {
	kind   string
	first  string // body text on the header line
	origin diag.Location
	lines  []Line
}

func (p *pending) raw() fragment.Raw {
	lines := p.lines
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1].Text) == "" {
		lines = lines[:len(lines)-1]
	}

	r := fragment.Raw{Kind: p.kind, Origin: p.origin, BodyLine: p.origin.Line}
	var body []string
	if p.first != "" {
		body = append(body, p.first)
	} else {
		for len(lines) > 0 && strings.TrimSpace(lines[0].Text) == "" {
			lines = lines[1:]
		}
		if len(lines) > 0 {
			r.BodyLine = lines[0].Row
		}
	}
	body = append(body, dedent(lines)...)
	r.Body = strings.Join(body, "\n")
	return r
}

// dedent expands leading tabs and removes the indentation common to all
// non-blank lines.
func dedent(lines []Line) []string {
	out := make([]string, len(lines))
	common := -1
	for i, l := range lines {
		text := expandIndent(strings.TrimRight(l.Text, " \t"))
		out[i] = text
		if text == "" {
			continue
		}
		n := len(text) - len(strings.TrimLeft(text, " "))
		if common < 0 || n < common {
			common = n
		}
	}
	for i, text := range out {
		if len(text) >= common && common > 0 {
			out[i] = text[common:]
		}
	}
	return out
}

func expandIndent(s string) string {
	trimmed := strings.TrimLeft(s, " \t")
	lead := s[:len(s)-len(trimmed)]
	if !strings.Contains(lead, "\t") {
		return s
	}
	var b strings.Builder
	for _, r := range lead {
		if r == '\t' {
			b.WriteString(strings.Repeat(" ", tabWidth-b.Len()%tabWidth))
			continue
		}
		b.WriteRune(r)
	}
	return b.String() + trimmed
}
