package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/insanitus/scratchablock/internal/arch"
	"github.com/insanitus/scratchablock/internal/cfgmodel"
	"github.com/insanitus/scratchablock/internal/util"
)

// Bblocks renders cfg as an annotated basic-block listing, the `bblocks`
// output format of §4.5: one label line per block, one line per
// instruction, and a graph-property header unless suppressed. Calls are
// detected textually ("call" as the instruction's leading token), since the
// core never inspects instruction structure beyond what §4.3 exposes.
func Bblocks(w io.Writer, cfg *cfgmodel.CFG, a arch.Architecture, opt Options) error {
	out := util.NewWriter(w)

	if !opt.NoGraphHeader {
		out.Write("; func %s @ 0x%x: %d block(s), %d edge(s)\n",
			cfg.EntryFuncName, cfg.EntryFuncAddr, len(cfg.Blocks), len(cfg.Edges))
	}

	cfgmodel.ForeachBlock(cfg, func(b *cfgmodel.BasicBlock) {
		out.Label(b.Label)
		for _, inst := range b.Insts {
			if skip(opt, inst.Dead) {
				continue
			}
			writeInst(out, inst, a, cfg.EntryFuncAddr, opt)
		}
	})

	return out.Flush()
}

// writeInst renders one instruction line: optional address prefix, the
// instruction text (or its debug-repr form), an optional dead-instruction
// marker, and an optional call use/def annotation — each gated by opt.
func writeInst(out *util.Writer, inst *cfgmodel.Inst, a arch.Architecture, funcAddr int64, opt Options) {
	var line strings.Builder

	if opt.InstAddr {
		fmt.Fprintf(&line, "0x%08x  ", inst.Addr)
	}
	if opt.Repr {
		fmt.Fprintf(&line, "%q", inst.Text)
	} else {
		line.WriteString(inst.Text)
	}

	if !opt.NoComments {
		if inst.Dead {
			line.WriteString("  ; dead")
		}
		if opt.AnnotateCalls && isCall(inst.Text) {
			line.WriteString("  ; ")
			line.WriteString(callAnnotation(a, funcAddr))
		}
	}

	out.Write("  %s\n", line.String())
}

// isCall reports whether text's leading token is "call", the only signal
// available to a component that never inspects instruction structure.
func isCall(text string) bool {
	fields := strings.Fields(text)
	return len(fields) > 0 && strings.EqualFold(fields[0], "call")
}

// callAnnotation renders the use/def sets CallDefs and CallParams derive for
// a call at funcAddr.
func callAnnotation(a arch.Architecture, funcAddr int64) string {
	uses := a.CallParams(funcAddr)
	defs := arch.SortedRegs(arch.CallDefs(a, funcAddr))
	return fmt.Sprintf("uses=%v defs=%v", uses, defs)
}
