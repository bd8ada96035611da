package diagfmt

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"apidoc/internal/diag"
)

type palette struct {
	err, warn, info, path, code, gutter *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan),
		path:   color.New(color.Bold),
		code:   color.New(color.Faint),
		gutter: color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.path, p.code, p.gutter} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty writes diagnostics in record order, one per line:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the source line and a caret when the file is in opts.Sources.
func Pretty(w io.Writer, diags []diag.Diagnostic, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	var buf bytes.Buffer
	for _, d := range diags {
		fmt.Fprintf(&buf, "%s: %s %s: %s\n",
			p.path.Sprint(d.Origin.String()),
			p.severity(d.Severity).Sprint(strings.ToUpper(d.Severity.String())),
			p.code.Sprint(d.Code.ID()),
			d.Message,
		)
		if line, ok := sourceLine(opts.Sources, d.Origin); ok {
			gutter := fmt.Sprintf("%5d | ", d.Origin.Line)
			buf.WriteString(p.gutter.Sprint(gutter))
			buf.WriteString(line)
			buf.WriteByte('\n')
			if d.Origin.Column > 0 && d.Origin.Column <= len(line)+1 {
				pad := strings.Repeat(" ", len(gutter)) + indentLike(line[:d.Origin.Column-1])
				buf.WriteString(pad)
				buf.WriteString(p.severity(d.Severity).Sprint("^"))
				buf.WriteByte('\n')
			}
		}
	}
	if opts.Summary {
		fmt.Fprintf(&buf, "%d error(s), %d warning(s), %d info\n",
			count(diags, diag.SevError), count(diags, diag.SevWarning), count(diags, diag.SevInfo))
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func sourceLine(sources map[string][]byte, loc diag.Location) (string, bool) {
	content, ok := sources[loc.File]
	if !ok || loc.Line <= 0 {
		return "", false
	}
	lines := strings.Split(string(content), "\n")
	if loc.Line > len(lines) {
		return "", false
	}
	return strings.TrimRight(lines[loc.Line-1], "\r"), true
}

// indentLike keeps tabs so the caret lines up with tab-indented source.
func indentLike(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			b.WriteRune('\t')
		} else {
			b.WriteRune(' ')
		}
	}
	return b.String()
}

func count(diags []diag.Diagnostic, sev diag.Severity) int {
	n := 0
	for _, d := range diags {
		if d.Severity == sev {
			n++
		}
	}
	return n
}
