package diag

import "fmt"

// ThrowLevel is the minimum severity at which a run fails.
// The zero value is ThrowError.
type ThrowLevel uint8

const (
	ThrowError ThrowLevel = iota
	ThrowWarn
	ThrowInfo
	// ThrowNever makes every run succeed regardless of diagnostics.
	ThrowNever
)

// ParseThrowLevel accepts "error", "warn", "info" and "never".
// The empty string selects the default, ThrowError.
func ParseThrowLevel(s string) (ThrowLevel, error) {
	switch s {
	case "", "error":
		return ThrowError, nil
	case "warn", "warning":
		return ThrowWarn, nil
	case "info":
		return ThrowInfo, nil
	case "never":
		return ThrowNever, nil
	}
	return ThrowError, fmt.Errorf("invalid throw level %q (want error, warn, info or never)", s)
}

func (t ThrowLevel) String() string {
	switch t {
	case ThrowError:
		return "error"
	case ThrowWarn:
		return "warn"
	case ThrowInfo:
		return "info"
	case ThrowNever:
		return "never"
	}
	return "unknown"
}

// Severity returns the severity threshold. ok is false for ThrowNever.
func (t ThrowLevel) Severity() (sev Severity, ok bool) {
	switch t {
	case ThrowError:
		return SevError, true
	case ThrowWarn:
		return SevWarning, true
	case ThrowInfo:
		return SevInfo, true
	}
	return 0, false
}

// Fails reports whether the highest severity in b is at or above the threshold.
func (t ThrowLevel) Fails(b *Bag) bool {
	threshold, ok := t.Severity()
	if !ok || b == nil {
		return false
	}
	highest, recorded := b.HighestSeverity()
	return recorded && highest >= threshold
}

// Set implements pflag.Value so the level can be bound to a CLI flag.
func (t *ThrowLevel) Set(s string) error {
	lvl, err := ParseThrowLevel(s)
	if err != nil {
		return err
	}
	*t = lvl
	return nil
}

// Type implements pflag.Value.
func (t *ThrowLevel) Type() string { return "level" }
