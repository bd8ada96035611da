package payload

// Equal reports whether a and b are structurally identical. Map key order is
// not significant; list order is.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case *Map:
		bv, ok := b.(*Map)
		if !ok {
			return false
		}
		return mapsEqual(av, bv)
	case []Value:
		bv, ok := b.([]Value)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	}
	if an, ok := number(a); ok {
		bn, ok := number(b)
		return ok && an == bn
	}
	return a == b
}

func mapsEqual(a, b *Map) bool {
	ak, bk := a.Unique(), b.Unique()
	if len(ak) != len(bk) {
		return false
	}
	for _, e := range ak {
		other, ok := b.Get(e.Key)
		if !ok || !Equal(e.Value, other) {
			return false
		}
	}
	return true
}

func number(v Value) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
