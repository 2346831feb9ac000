package plan

// Optimize rewrites sel into an IndexLookup when one of probes' key-column
// sets exactly matches the conjunction's constrained columns, per spec
// §4.6's predicate-pushdown rule. probes is walked in order and the first
// match wins, matching "_indices iteration order" as the tie-break.
// A conjunction the optimizer cannot fully cover (mixed predicate, no
// matching index) is returned unchanged and falls through to scan+filter.
func Optimize(sel *Select, probes []IndexProbe) Node {
	if len(sel.Conjunction) == 0 {
		return sel
	}
	constrained := sel.Conjunction.ColumnSet()

	for _, probe := range probes {
		if !sameColumnSet(probe.Columns, constrained) {
			continue
		}
		key, ok := sel.Conjunction.ValuesInOrder(probe.Columns)
		if !ok {
			continue
		}
		return &IndexLookup{Probe: probe, Key: key}
	}
	return sel
}

func sameColumnSet(cols []string, set map[string]bool) bool {
	if len(cols) != len(set) {
		return false
	}
	for _, c := range cols {
		if !set[c] {
			return false
		}
	}
	return true
}
