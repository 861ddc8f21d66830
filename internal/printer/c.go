package printer

import (
	"fmt"
	"io"

	"github.com/insanitus/scratchablock/internal/arch"
	"github.com/insanitus/scratchablock/internal/cfgmodel"
	"github.com/insanitus/scratchablock/internal/util"
)

// C renders cfg as a C-like listing, the `c` output format of §4.5: blocks
// are renumbered in postorder first (a prerequisite for C-style output,
// §4.3), then every surviving instruction is emitted terminated with `;`.
// Each block's `block_N:` label line is preceded by a comment line naming
// the block's original label.
func C(w io.Writer, cfg *cfgmodel.CFG, a arch.Architecture, opt Options) error {
	cfg.NumberPostorder()

	out := util.NewWriter(w)

	cfgmodel.ForeachBlock(cfg, func(b *cfgmodel.BasicBlock) {
		n, _ := cfg.PostorderNumber(b.Label)
		out.Write("// %s\n", b.Label)
		out.Write("block_%d:\n", n)
		for _, inst := range b.Insts {
			if skip(opt, inst.Dead) {
				continue
			}
			writeCInst(out, inst, a, cfg.EntryFuncAddr, opt)
		}
	})

	return out.Flush()
}

// writeCInst renders one instruction the way writeInst does, but always
// appends the C statement terminator `;` before the trailing comment.
func writeCInst(out *util.Writer, inst *cfgmodel.Inst, a arch.Architecture, funcAddr int64, opt Options) {
	body := inst.Text
	if opt.Repr {
		body = fmt.Sprintf("%q", inst.Text)
	}

	var comment string
	if !opt.NoComments {
		if inst.Dead {
			comment += "  // dead"
		}
		if opt.AnnotateCalls && isCall(inst.Text) {
			comment += "  // " + callAnnotation(a, funcAddr)
		}
	}

	if opt.InstAddr {
		out.Write("  /* 0x%08x */ %s;%s\n", inst.Addr, body, comment)
		return
	}
	out.Write("  %s;%s\n", body, comment)
}
