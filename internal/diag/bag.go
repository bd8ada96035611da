package diag

// Bag collects the diagnostics of one run in record order.
type Bag struct {
	items []Diagnostic
}

func NewBag() *Bag {
	return &Bag{}
}

// Add records a diagnostic. Recorded diagnostics are never removed.
func (b *Bag) Add(d Diagnostic) {
	b.items = append(b.items, d)
}

// Len returns the number of recorded diagnostics.
func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns a copy of the recorded diagnostics in record order.
func (b *Bag) Items() []Diagnostic {
	return append([]Diagnostic(nil), b.items...)
}

// HighestSeverity returns the most severe recorded severity.
// ok is false when the bag is empty.
func (b *Bag) HighestSeverity() (sev Severity, ok bool) {
	for i := range b.items {
		if !ok || b.items[i].Severity > sev {
			sev = b.items[i].Severity
			ok = true
		}
	}
	return sev, ok
}

// HasErrors reports whether at least one diagnostic has Severity >= Error.
func (b *Bag) HasErrors() bool {
	sev, ok := b.HighestSeverity()
	return ok && sev >= SevError
}

// Count returns the number of diagnostics with the given severity.
func (b *Bag) Count(sev Severity) int {
	n := 0
	for i := range b.items {
		if b.items[i].Severity == sev {
			n++
		}
	}
	return n
}

// Filter returns the diagnostics carrying the given code, in record order.
func (b *Bag) Filter(code Code) []Diagnostic {
	var out []Diagnostic
	for _, d := range b.items {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}
