package diag

import "fmt"

// Location points at the source of an annotation.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line,omitempty"`   // 1-based, 0 when unknown
	Column int    `json:"column,omitempty"` // 1-based, 0 when unknown
}

func (l Location) String() string {
	switch {
	case l.Line <= 0:
		return l.File
	case l.Column <= 0:
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Diagnostic is a single recorded issue.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	Message  string   `json:"message"`
	Origin   Location `json:"origin"`
}

func New(sev Severity, code Code, origin Location, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Origin:   origin,
		Message:  msg,
	}
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s %s: %s", d.Origin, d.Severity, d.Code, d.Message)
}
