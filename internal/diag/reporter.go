package diag

import "fmt"

// Reporter is the minimal contract for receiving diagnostics from a stage.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter writes into a *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// ReportError emits an error-level diagnostic with a formatted message.
func ReportError(r Reporter, code Code, origin Location, format string, args ...any) {
	report(r, SevError, code, origin, format, args...)
}

// ReportWarning emits a warning-level diagnostic with a formatted message.
func ReportWarning(r Reporter, code Code, origin Location, format string, args ...any) {
	report(r, SevWarning, code, origin, format, args...)
}

// ReportInfo emits an info-level diagnostic with a formatted message.
func ReportInfo(r Reporter, code Code, origin Location, format string, args ...any) {
	report(r, SevInfo, code, origin, format, args...)
}

func report(r Reporter, sev Severity, code Code, origin Location, format string, args ...any) {
	if r == nil {
		return
	}
	r.Report(New(sev, code, origin, fmt.Sprintf(format, args...)))
}
