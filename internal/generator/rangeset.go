package generator

// RangeSet describes the scalar bounds the extent analyzer (§4.E) can
// prove from a chain of andalso/orelse-connected ordered comparisons: an
// optional lower and upper bound, plus a set of individually excluded
// points (from `<>` conjuncts). The zero value is the universal range —
// no bound at all.
type RangeSet struct {
	Low       *int64
	LowStrict bool

	High       *int64
	HighStrict bool

	Excluded []int64

	// Parts holds the pieces of a disjunction the merge step couldn't
	// collapse into one interval (an orelse whose sides don't overlap or
	// abut). A non-nil Parts means the other fields are meaningless; the
	// extent analyzer falls back to a union-of-extents rather than a
	// single range in that case.
	Parts []RangeSet
}

// Universal is the unconstrained range (equivalent to the zero value,
// spelled out for readability at call sites).
func Universal() RangeSet { return RangeSet{} }

// PointRange is the single-value range {v}.
func PointRange(v int64) RangeSet {
	return RangeSet{Low: &v, High: &v}
}

// AtLeast is [v, +inf); AtMost is (-inf, v]; Above is (v, +inf); Below is
// (-inf, v) — the four half-line shapes an ordered comparison inverts to
// (spec §4.E "ordered comparisons: emit a range-set and a filter").
func AtLeast(v int64) RangeSet { return RangeSet{Low: &v} }
func Above(v int64) RangeSet   { return RangeSet{Low: &v, LowStrict: true} }
func AtMost(v int64) RangeSet  { return RangeSet{High: &v} }
func Below(v int64) RangeSet   { return RangeSet{High: &v, HighStrict: true} }

// Excluding is the universal range minus {v} — what `x <> v` inverts to
// on its own (an infinite range with one hole).
func Excluding(v int64) RangeSet { return RangeSet{Excluded: []int64{v}} }

// Bounded reports whether r is a closed finite interval on both ends,
// which is what makes an Extent generator FINITE rather than INFINITE
// even over an infinite-valued type (spec §4.D "Extent").
func (r RangeSet) Bounded() bool {
	return r.Parts == nil && r.Low != nil && r.High != nil
}

// Empty reports a provably-empty range — spec §8's "x > a andalso x < b
// with a >= b yields an empty range, no error" boundary case.
func (r RangeSet) Empty() bool {
	if r.Parts != nil {
		for _, p := range r.Parts {
			if !p.Empty() {
				return false
			}
		}
		return true
	}
	if r.Low == nil || r.High == nil {
		return false
	}
	if *r.Low > *r.High {
		return true
	}
	if *r.Low == *r.High && (r.LowStrict || r.HighStrict) {
		return true
	}
	return false
}

// Intersect combines two range-sets conjunctively (andalso): the tighter
// of each bound, and the union of excluded points.
func Intersect(a, b RangeSet) RangeSet {
	if a.Parts != nil || b.Parts != nil {
		// Distribute the conjunction over whichever side has parts.
		left := a.Parts
		if left == nil {
			left = []RangeSet{a}
		}
		right := b.Parts
		if right == nil {
			right = []RangeSet{b}
		}
		var parts []RangeSet
		for _, l := range left {
			for _, r := range right {
				parts = append(parts, Intersect(l, r))
			}
		}
		return RangeSet{Parts: parts}
	}

	out := RangeSet{}
	out.Low, out.LowStrict = tighterLow(a.Low, a.LowStrict, b.Low, b.LowStrict)
	out.High, out.HighStrict = tighterHigh(a.High, a.HighStrict, b.High, b.HighStrict)
	out.Excluded = append(append([]int64(nil), a.Excluded...), b.Excluded...)
	return out
}

// UnionRangeSet combines two range-sets disjunctively (orelse). When the
// two intervals overlap or abut, or either is unbounded on some end, they
// merge into one interval with the looser of each bound (so the merged
// interval can cover values neither input contains); otherwise the
// result keeps both as Parts, signalling the extent analyzer should fall
// back to concatenating two extents (spec §4.E "orelse: ... union extents").
func UnionRangeSet(a, b RangeSet) RangeSet {
	if a.Parts != nil || b.Parts != nil || len(a.Excluded) > 0 || len(b.Excluded) > 0 {
		return RangeSet{Parts: []RangeSet{a, b}}
	}
	if !overlapsOrAbuts(a, b) {
		return RangeSet{Parts: []RangeSet{a, b}}
	}
	out := RangeSet{}
	out.Low, out.LowStrict = looserLow(a.Low, a.LowStrict, b.Low, b.LowStrict)
	out.High, out.HighStrict = looserHigh(a.High, a.HighStrict, b.High, b.HighStrict)
	return out
}

func overlapsOrAbuts(a, b RangeSet) bool {
	if a.Low == nil || a.High == nil || b.Low == nil || b.High == nil {
		return true // either side unbounded on some end: treat as mergeable
	}
	// a before b, with a gap strictly greater than 1 (integer semantics)
	if *a.High+1 < *b.Low {
		return false
	}
	if *b.High+1 < *a.Low {
		return false
	}
	return true
}

func tighterLow(aLow *int64, aStrict bool, bLow *int64, bStrict bool) (*int64, bool) {
	if aLow == nil {
		return bLow, bStrict
	}
	if bLow == nil {
		return aLow, aStrict
	}
	if *aLow > *bLow {
		return aLow, aStrict
	}
	if *bLow > *aLow {
		return bLow, bStrict
	}
	return aLow, aStrict || bStrict
}

func tighterHigh(aHigh *int64, aStrict bool, bHigh *int64, bStrict bool) (*int64, bool) {
	if aHigh == nil {
		return bHigh, bStrict
	}
	if bHigh == nil {
		return aHigh, aStrict
	}
	if *aHigh < *bHigh {
		return aHigh, aStrict
	}
	if *bHigh < *aHigh {
		return bHigh, bStrict
	}
	return aHigh, aStrict || bStrict
}

func looserLow(aLow *int64, aStrict bool, bLow *int64, bStrict bool) (*int64, bool) {
	if aLow == nil || bLow == nil {
		return nil, false
	}
	if *aLow < *bLow {
		return aLow, aStrict
	}
	if *bLow < *aLow {
		return bLow, bStrict
	}
	return aLow, aStrict && bStrict
}

func looserHigh(aHigh *int64, aStrict bool, bHigh *int64, bStrict bool) (*int64, bool) {
	if aHigh == nil || bHigh == nil {
		return nil, false
	}
	if *aHigh > *bHigh {
		return aHigh, aStrict
	}
	if *bHigh > *aHigh {
		return bHigh, bStrict
	}
	return aHigh, aStrict && bStrict
}
