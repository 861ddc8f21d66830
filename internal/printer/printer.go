// Package printer renders a cfgmodel.CFG in one of the output-format
// branches of the Pipeline Driver (§4.5): an annotated basic-block listing,
// an assembly-like form, a C-like form, and a .dot graph dump. Every
// print-time toggle (show_addr, show_comments, show_insts, simple_repr) is a
// field of an Options value passed into each printer, never a package
// global, per §9's redesign note.
package printer

// Options bundles every instruction-level and format-level print-time flag
// named in §6's command-line surface. None of these are package globals:
// a caller builds one Options per run (or per file, if flags ever vary
// per-file) and passes it explicitly to the renderer it wants.
type Options struct {
	// NoDead elides instructions marked Dead by a pass.
	NoDead bool
	// NoComments elides decompilation annotations (call use/def notes,
	// dead-instruction markers) from the rendered output.
	NoComments bool
	// NoGraphHeader elides the graph-property header line of bblocks output.
	NoGraphHeader bool
	// AnnotateCalls appends a use/def-set comment after call instructions.
	AnnotateCalls bool
	// InstAddr prefixes each rendered instruction with its address.
	InstAddr bool
	// DotInst includes instruction text inside .dot graph nodes, not just
	// the block label.
	DotInst bool
	// Repr selects the debug-repr rendering of an instruction instead of
	// the default human form.
	Repr bool
}

// skip reports whether inst should be elided under opt (dead-code elision).
func skip(opt Options, dead bool) bool {
	return opt.NoDead && dead
}
