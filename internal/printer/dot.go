package printer

import (
	"io"
	"strings"

	"github.com/insanitus/scratchablock/internal/cfgmodel"
	"github.com/insanitus/scratchablock/internal/util"
)

// Dot renders cfg as a Graphviz .dot graph: one node per block, one edge
// statement per CFG edge, used by the `--debug` dump files (`<in>.0.dot`,
// `<in>.out.dot`). Instruction text is included in each node's label only
// when opt.DotInst is set — by default a node shows just its label, keeping
// large functions legible.
func Dot(w io.Writer, cfg *cfgmodel.CFG, opt Options) error {
	out := util.NewWriter(w)

	out.Write("digraph %s {\n", dotSafe(cfg.EntryFuncName))
	cfgmodel.ForeachBlock(cfg, func(b *cfgmodel.BasicBlock) {
		out.Write("  %s [label=%q];\n", dotSafe(b.Label), dotNodeLabel(b, opt))
	})
	for _, e := range cfg.Edges {
		out.Write("  %s -> %s;\n", dotSafe(e.From), dotSafe(e.To))
	}
	out.WriteString("}\n")

	return out.Flush()
}

// dotNodeLabel builds the label text for one block's .dot node.
func dotNodeLabel(b *cfgmodel.BasicBlock, opt Options) string {
	if !opt.DotInst {
		return b.Label
	}
	var lines []string
	lines = append(lines, b.Label)
	for _, inst := range b.Insts {
		if skip(opt, inst.Dead) {
			continue
		}
		lines = append(lines, inst.Text)
	}
	return strings.Join(lines, "\\n")
}

// dotSafe maps a block label to a bareword-safe .dot identifier.
func dotSafe(label string) string {
	r := strings.NewReplacer(".", "_", "-", "_", ":", "_")
	return "n_" + r.Replace(label)
}
