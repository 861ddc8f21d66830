package pipeline

import "github.com/insanitus/scratchablock/internal/printer"

// Output format names for the §4.5 output-format branch.
const (
	FormatNone    = "none"
	FormatBblocks = "bblocks"
	FormatAsm     = "asm"
	FormatC       = "c"
)

// listingSuffix is the filename suffix directory-mode input selects children
// by (§6: "Directory-mode input selects children whose name ends in .lst").
const listingSuffix = ".lst"

// defaultOutputSuffix is applied to derived output filenames in directory
// mode when no -o is given (§6's --output-suffix default).
const defaultOutputSuffix = ".out"

// Options bundles every flag of §6's command-line surface, independent of
// how those flags were parsed (cmd/scratchablock's CLI layer builds one of
// these from a cli.Context; tests build one by hand).
type Options struct {
	// Input is the one positional argument: an input file or directory.
	Input string
	// Output is -o: an output file (single-file mode), a directory
	// (directory mode), or "" for stdout / suffix-derived paths.
	Output string
	// Arch is --arch, the architecture to load (default "xtensa").
	Arch string
	// Scripts is --script, repeatable; a non-empty Scripts replaces any
	// script embedded in the input file (§4.4's script-replacement rule).
	Scripts []string
	// Iter is --iter: repeat the whole driver until funcdb is unchanged.
	Iter bool
	// FuncdbPath is --funcdb. "" selects the project-layout default
	// (§6); the literal "none" disables the funcdb entirely.
	FuncdbPath string
	// Format is --format (default FormatBblocks).
	Format string
	// OutputSuffix is --output-suffix (default ".out").
	OutputSuffix string
	// Debug is --debug: write <in>.0.bb, <in>.0.dot, <in>.out.bb,
	// <in>.out.dot around processing.
	Debug bool
	// Printer carries the instruction-level print-time flags (--no-dead,
	// --no-comments, --no-graph-header, --annotate-calls, --inst-addr,
	// --dot-inst, --repr).
	Printer printer.Options
}

// WithDefaults returns a copy of opt with zero-valued fields filled in to
// their §6 defaults.
func (opt Options) WithDefaults() Options {
	if opt.Arch == "" {
		opt.Arch = "xtensa"
	}
	if opt.Format == "" {
		opt.Format = FormatBblocks
	}
	if opt.OutputSuffix == "" {
		opt.OutputSuffix = defaultOutputSuffix
	}
	return opt
}
