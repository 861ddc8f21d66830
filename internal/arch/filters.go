package arch

import (
	"sort"
	"strconv"
)

// ----------------------------
// ----- Filter helpers -------
// ----------------------------
//
// Passes use these two filters to clean up register sets discovered by
// dataflow before they are committed to a Function Record.

// RegRange builds an ordered RegSeq of registers prefix+lo .. prefix+hi
// inclusive, e.g. RegRange("a", 2, 7) -> a2, a3, a4, a5, a6, a7.
func RegRange(prefix string, lo, hi int) RegSeq {
	seq := make(RegSeq, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		seq = append(seq, Reg(prefix+strconv.Itoa(i)))
	}
	return seq
}

// ContinuousSubrange returns the longest prefix s1..sk of the ordered
// reference sequence seq such that {s1..sk} is a subset of candidates;
// anything past the first gap is dropped.
//
// Rationale: when a calling convention mandates that outgoing params fill
// a2, a3, a4... in order, a candidate set {a2, a4} means a4 is spurious and
// must be discarded.
func ContinuousSubrange(candidates RegSet, seq RegSeq) RegSeq {
	var out RegSeq
	for _, r := range seq {
		if _, ok := candidates[r]; !ok {
			break
		}
		out = append(out, r)
	}
	return out
}

// SimpleIntersection returns candidates ∩ seq, without regard to order or
// contiguity.
func SimpleIntersection(candidates RegSet, seq RegSeq) RegSet {
	out := make(RegSet)
	for _, r := range seq {
		if _, ok := candidates[r]; ok {
			out[r] = struct{}{}
		}
	}
	return out
}

// ToRegSet converts an ordered RegSeq into an unordered RegSet.
func ToRegSet(seq RegSeq) RegSet {
	out := make(RegSet, len(seq))
	for _, r := range seq {
		out[r] = struct{}{}
	}
	return out
}

// SortedRegs returns the registers of s in a stable, deterministic order
// (used by canonicalization and printers, never for calling-convention
// semantics).
func SortedRegs(s RegSet) RegSeq {
	out := make(RegSeq, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
