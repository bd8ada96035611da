package diag

import (
	"fmt"
	"strings"
)

// AggregateError is the failure value of a run. It carries every diagnostic
// recorded during the run in record order.
type AggregateError struct {
	Threshold   ThrowLevel
	Diagnostics []Diagnostic
}

func (e *AggregateError) Error() string {
	var errs, warns, infos int
	for _, d := range e.Diagnostics {
		switch d.Severity {
		case SevError:
			errs++
		case SevWarning:
			warns++
		default:
			infos++
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "annotation build failed at throw level %q: %d error(s), %d warning(s), %d info", e.Threshold, errs, warns, infos)
	for _, d := range e.Diagnostics {
		b.WriteString("\n  ")
		b.WriteString(d.String())
	}
	return b.String()
}
