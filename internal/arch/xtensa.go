package arch

func init() {
	register("xtensa", newXtensa)
}

// xtensa implements Architecture for the Xtensa windowed-register ABI: a0
// holds the return address, sp is the stack pointer, and a2..a15 are the
// general-purpose window registers used for arguments, returns and locals.
type xtensa struct {
	allRegs RegSet
	params  RegSeq
	ret     RegSeq
	save    RegSet
}

func newXtensa() Architecture {
	all := ToRegSet(RegRange("a", 2, 15))
	all["a0"] = struct{}{}
	all["sp"] = struct{}{}

	save := ToRegSet(RegRange("a", 12, 15))
	save["sp"] = struct{}{}

	return &xtensa{
		allRegs: all,
		params:  RegRange("a", 2, 7),
		ret:     RegRange("a", 2, 5),
		save:    save,
	}
}

func (x *xtensa) Name() string { return "xtensa" }

func (x *xtensa) Bitness() int { return 32 }

func (x *xtensa) Endianness() string { return "little" }

func (x *xtensa) AllRegs() RegSet { return x.allRegs }

// CallParams returns {a2..a7} ordered for every call site; Xtensa does not
// vary the parameter convention per address.
func (x *xtensa) CallParams(addr int64) RegSeq { return x.params }

// CallRet returns {a2..a5} ordered for every call site.
func (x *xtensa) CallRet(addr int64) RegSeq { return x.ret }

// CallSave returns {a12..a15} ∪ {sp} for every call site.
func (x *xtensa) CallSave(addr int64) RegSet { return x.save }

// RetUses returns the empty set: although a0 holds the return address and sp
// must be preserved across the call, Xtensa's window-rotate semantics make
// both implicit rather than an explicit dataflow use at the return site.
func (x *xtensa) RetUses() RegSet { return RegSet{} }
