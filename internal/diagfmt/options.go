package diagfmt

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color bool
	// Sources, when set, supplies file contents for the source line preview.
	Sources map[string][]byte
	// Summary appends the per-severity counts.
	Summary bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	Max    int // truncates the output, 0 means everything
	Indent bool
}
