package pass

import (
	"strings"

	"github.com/insanitus/scratchablock/internal/arch"
	"github.com/insanitus/scratchablock/internal/cfgmodel"
	"github.com/insanitus/scratchablock/internal/funcdb"
)

// A handful of small, generic passes ship as builtins so the pipeline is
// runnable end to end without an external script. Real dataflow analyses
// (SSA construction, expression propagation, true liveness) are the
// out-of-scope transformation passes of §1; these exist to exercise the
// core's contract, not to decompile anything faithfully.

func init() {
	RegisterWholeCFG("inferCallParams", inferCallParams)
	RegisterWholeCFG("markAnalyzed", markAnalyzed)
	RegisterPerInst("markDeadNop", markDeadNop)
	RegisterPerBlock("markDeadEmptyBlock", markDeadEmptyBlock)
}

// inferCallParams scans the entry block's instruction text for mentions of
// the architecture's parameter registers, and writes the continuous-subrange
// filtered result (§4.1) to the current function's Record.Params. This is a
// deliberately simple stand-in for real parameter-liveness dataflow: it
// demonstrates the filter contract the Architecture interface exists to
// support, not a sound analysis.
func inferCallParams(ctx *Context) error {
	if len(ctx.CFG.Blocks) == 0 {
		return nil
	}
	entry := ctx.CFG.Blocks[0]
	params := ctx.Arch.CallParams(ctx.CFG.EntryFuncAddr)

	mentioned := arch.RegSet{}
	for _, inst := range entry.Insts {
		for _, r := range params {
			if strings.Contains(inst.Text, string(r)) {
				mentioned[r] = struct{}{}
			}
		}
	}

	rec, ok := ctx.DB.Get(ctx.CFG.EntryFuncAddr)
	if !ok {
		rec = funcdb.NewRecord(ctx.CFG.EntryFuncName)
	}
	rec.Params = arch.ContinuousSubrange(mentioned, params)
	ctx.DB.Set(ctx.CFG.EntryFuncAddr, rec)
	return nil
}

// markAnalyzed sets the current function's Props["analyzed"] = true.
// Idempotent: once set, later runs make no further change, so a script
// consisting only of this pass converges after exactly one iteration that
// reports a change.
func markAnalyzed(ctx *Context) error {
	rec, ok := ctx.DB.Get(ctx.CFG.EntryFuncAddr)
	if !ok {
		rec = funcdb.NewRecord(ctx.CFG.EntryFuncName)
	}
	if rec.Props == nil {
		rec.Props = map[string]any{}
	}
	rec.Props["analyzed"] = true
	ctx.DB.Set(ctx.CFG.EntryFuncAddr, rec)
	return nil
}

// markDeadNop marks every instruction whose text is exactly "nop" as dead,
// so printers can elide it when run with --no-dead.
func markDeadNop(ctx *Context, i *cfgmodel.Inst) error {
	if strings.TrimSpace(i.Text) == "nop" {
		i.Dead = true
	}
	return nil
}

// markDeadEmptyBlock marks every instruction of a block dead when the block
// is non-empty and every one of its instructions is exactly "nop", wherever
// the block sits in the CFG. A block with no instructions is left as is.
func markDeadEmptyBlock(ctx *Context, b *cfgmodel.BasicBlock) error {
	allNop := len(b.Insts) > 0
	for _, i := range b.Insts {
		if strings.TrimSpace(i.Text) != "nop" {
			allNop = false
			break
		}
	}
	if allNop {
		for _, i := range b.Insts {
			i.Dead = true
		}
	}
	return nil
}
