package arch

import "testing"

func regSet(rs ...Reg) RegSet {
	s := make(RegSet, len(rs))
	for _, r := range rs {
		s[r] = struct{}{}
	}
	return s
}

func eqRegSet(a, b RegSet) bool {
	if len(a) != len(b) {
		return false
	}
	for r := range a {
		if _, ok := b[r]; !ok {
			return false
		}
	}
	return true
}

func eqRegSeq(a, b RegSeq) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestContinuousSubrange(t *testing.T) {
	seq := RegSeq{"a2", "a3", "a4", "a5"}

	cases := []struct {
		name string
		in   RegSet
		want RegSeq
	}{
		{"drop-trailing-gap", regSet("a2", "a3", "a5"), RegSeq{"a2", "a3"}},
		{"missing-prefix", regSet("a3", "a4"), nil},
		{"full-range", regSet("a2", "a3", "a4", "a5"), RegSeq{"a2", "a3", "a4", "a5"}},
		{"empty", regSet(), nil},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ContinuousSubrange(c.in, seq)
			if !eqRegSeq(got, c.want) {
				t.Errorf("ContinuousSubrange(%v, %v) = %v, want %v", c.in, seq, got, c.want)
			}
		})
	}
}

func TestSimpleIntersection(t *testing.T) {
	seq := RegSeq{"a2", "a3", "a4", "a5"}
	got := SimpleIntersection(regSet("a2", "a4", "a9"), seq)
	want := regSet("a2", "a4")
	if !eqRegSet(got, want) {
		t.Errorf("SimpleIntersection = %v, want %v", got, want)
	}
}

func TestSortedRegsDeterministic(t *testing.T) {
	s := regSet("a5", "a2", "sp", "a3")
	got := SortedRegs(s)
	want := RegSeq{"a2", "a3", "a5", "sp"}
	if len(got) != len(want) {
		t.Fatalf("len mismatch: %v vs %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortedRegs = %v, want %v", got, want)
		}
	}
}
