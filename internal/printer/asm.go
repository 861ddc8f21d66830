package printer

import (
	"io"

	"github.com/insanitus/scratchablock/internal/arch"
	"github.com/insanitus/scratchablock/internal/cfgmodel"
	"github.com/insanitus/scratchablock/internal/util"
)

// Asm renders cfg as an assembly-like listing, the `asm` output format of
// §4.5: no graph header, each block introduced by its `label:` line, dead
// instructions elided under opt.NoDead exactly as in Bblocks.
func Asm(w io.Writer, cfg *cfgmodel.CFG, a arch.Architecture, opt Options) error {
	out := util.NewWriter(w)

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
