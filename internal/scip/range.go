package scip

// NewRange builds a SCIP-encoded range, compressing single-line ranges to
// the three-element form.
func NewRange(startLine, startCol, endLine, endCol int32) []int32 {
	if startLine == endLine {
		return []int32{startLine, startCol, endCol}
	}
	return []int32{startLine, startCol, endLine, endCol}
}

// RangeBounds expands a SCIP-encoded range to explicit start/end positions.
// Malformed ranges expand to all zeros.
func RangeBounds(r []int32) (startLine, startCol, endLine, endCol int32) {
	switch len(r) {
	case 3:
		return r[0], r[1], r[0], r[2]
	case 4:
		return r[0], r[1], r[2], r[3]
	default:
		return 0, 0, 0, 0
	}
}

// CompareRange orders ranges by start position, then end position.
func CompareRange(a, b []int32) int {
	asl, asc, ael, aec := RangeBounds(a)
	bsl, bsc, bel, bec := RangeBounds(b)
	if c := cmp(asl, bsl); c != 0 {
		return c
	}
	if c := cmp(asc, bsc); c != 0 {
		return c
	}
	if c := cmp(ael, bel); c != 0 {
		return c
	}
	return cmp(aec, bec)
}

// RangeContains reports whether outer fully contains inner.
func RangeContains(outer, inner []int32) bool {
	osl, osc, oel, oec := RangeBounds(outer)
	isl, isc, iel, iec := RangeBounds(inner)
	if isl < osl || (isl == osl && isc < osc) {
		return false
	}
	if iel > oel || (iel == oel && iec > oec) {
		return false
	}
	return true
}

func cmp(a, b int32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
