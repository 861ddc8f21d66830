// Package funcdb provides the process-wide, on-disk-backed map of
// per-function facts that transformations read and mutate, and whose
// change-detection is the pipeline's fixed-point criterion.
package funcdb

import (
	"reflect"

	"github.com/insanitus/scratchablock/internal/arch"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Record is one Function Record: the Funcdb entry for a single function
// address. Props holds free-form analysis facts written by passes (strings
// to structured values); its values must be comparable with reflect.DeepEqual
// after a YAML round-trip (strings, numbers, bools, and nested maps/slices
// of the same).
type Record struct {
	Name   string
	Params arch.RegSeq
	Ret    arch.RegSeq
	Save   arch.RegSeq
	Props  map[string]any
}

// NewRecord returns an empty Record with the given symbolic name and an
// initialized, empty property bag.
func NewRecord(name string) Record {
	return Record{Name: name, Props: map[string]any{}}
}

// canonical returns a copy of r with Params/Ret order-preserved (calling
// convention order is semantically meaningful) but Save canonicalized to a
// sorted order, since save sets are unordered by definition (§3).
func (r Record) canonical() Record {
	c := r
	c.Save = arch.SortedRegs(arch.ToRegSet(r.Save))
	if c.Props == nil {
		c.Props = map[string]any{}
	}
	return c
}

// Equal reports whether r and o compare equal in their canonical
// (order-normalized where applicable) form, per §3's Function Record
// equality rule.
func (r Record) Equal(o Record) bool {
	rc, oc := r.canonical(), o.canonical()
	return rc.Name == oc.Name &&
		regSeqEqual(rc.Params, oc.Params) &&
		regSeqEqual(rc.Ret, oc.Ret) &&
		regSeqEqual(rc.Save, oc.Save) &&
		reflect.DeepEqual(rc.Props, oc.Props)
}

// clone returns a deep copy of r, so that mutations to the copy never alias
// the original (required by Funcdb.Snapshot).
func (r Record) clone() Record {
	c := Record{
		Name:   r.Name,
		Params: append(arch.RegSeq(nil), r.Params...),
		Ret:    append(arch.RegSeq(nil), r.Ret...),
		Save:   append(arch.RegSeq(nil), r.Save...),
		Props:  cloneProps(r.Props),
	}
	return c
}

func regSeqEqual(a, b arch.RegSeq) bool {
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

// cloneProps deep-copies a property bag. Values are expected to be the
// subset of types YAML itself produces (scalars, []any, map[string]any), so
// a structural recursive copy is sufficient without reflection tricks.
func cloneProps(p map[string]any) map[string]any {
	if p == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneProps(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return t
	}
}
