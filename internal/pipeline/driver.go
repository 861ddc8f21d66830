package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/insanitus/scratchablock/internal/arch"
	"github.com/insanitus/scratchablock/internal/cfgmodel"
	"github.com/insanitus/scratchablock/internal/funcdb"
	"github.com/insanitus/scratchablock/internal/pass"
	"github.com/insanitus/scratchablock/internal/printer"
	"github.com/sirupsen/logrus"
)

// Driver glues the Arch Registry, Funcdb, CFG Model, and Pass Registry &
// Script Interpreter into the fixed-point pipeline of §4.5. It is an
// explicit context object, not a package singleton, so a test (or a second
// run in the same process) can construct an independent Driver with its own
// Architecture and plugin set.
type Driver struct {
	Registry *arch.Registry
	Interp   *pass.Interpreter
	Log      *logrus.Logger
}

// NewDriver returns a Driver with a fresh, unloaded Registry and an
// Interpreter with no plugins registered; callers register plugins with
// Interp.RegisterPlugin before calling Run.
func NewDriver() *Driver {
	return &Driver{
		Registry: arch.NewRegistry(),
		Interp:   pass.NewInterpreter(),
		Log:      logrus.New(),
	}
}

// Run executes opt's pipeline: a single pass if opt.Iter is unset, or
// repeated passes (step 1–6 of §4.5) until an iteration reports no funcdb
// change. It returns whether the final iteration changed the funcdb.
func (d *Driver) Run(opt Options) (bool, error) {
	opt = opt.WithDefaults()
	if d.Log == nil {
		d.Log = logrus.New()
	}

	if err := validateFormat(opt.Format); err != nil {
		return false, err
	}
	if err := d.Registry.Load(opt.Arch); err != nil {
		return false, err
	}

	d.Log.WithFields(logrus.Fields{
		"input": opt.Input, "arch": opt.Arch, "format": opt.Format, "iter": opt.Iter,
	}).Debug("pipeline run starting")

	changed := false
	iteration := 0
	for {
		d.Log.WithField("iteration", iteration).Debug("iteration starting")
		var err error
		changed, err = d.runOneIteration(opt, iteration)
		if err != nil {
			d.Log.WithFields(logrus.Fields{"iteration": iteration, "error": err}).Debug("iteration failed")
			return false, err
		}
		d.Log.WithFields(logrus.Fields{"iteration": iteration, "changed": changed}).Debug("iteration complete")
		iteration++
		if !opt.Iter || !changed {
			break
		}
	}
	return changed, nil
}

func validateFormat(format string) error {
	switch format {
	case FormatNone, FormatBblocks, FormatAsm, FormatC:
		return nil
	default:
		return &ConfigError{Msg: fmt.Sprintf("unknown output format: %s", format)}
	}
}

// funcdbPaths resolves which path the live funcdb is backed by, and the
// ordered list of paths to load from (just that path; runOneIteration
// prepends a `<funcdb>.in` seed on iteration 0 only, §4.5 step 1a).
func (d *Driver) funcdbPaths(opt Options) (live string, loadList []string, symtab string, disabled bool) {
	if opt.FuncdbPath == "none" {
		return "", nil, "", true
	}
	live = opt.FuncdbPath
	if live == "" {
		// Project-layout resolution (§6) only applies when --funcdb is
		// unset; an explicit --funcdb path opts out of symtab loading too.
		resolved, symtabPath, err := ResolveProject(opt.Input)
		if err == nil {
			live = resolved
			symtab = symtabPath
		}
	}
	return live, []string{live}, symtab, false
}

func (d *Driver) runOneIteration(opt Options, iteration int) (bool, error) {
	liveFuncdbPath, loadList, symtabPath, disabled := d.funcdbPaths(opt)
	d.Log.WithFields(logrus.Fields{
		"funcdb": liveFuncdbPath, "symtab": symtabPath, "disabled": disabled,
	}).Debug("resolved funcdb path")

	var db *funcdb.DB
	if disabled {
		db = funcdb.NewDisabled()
	} else {
		db = funcdb.New()
		if iteration == 0 {
			seed := liveFuncdbPath + ".in"
			if _, err := os.Stat(seed); err == nil {
				loadList = append([]string{seed}, loadList...)
			}
		}
		for _, p := range loadList {
			if err := db.LoadOptional(p); err != nil {
				return false, err
			}
		}
		if symtabPath != "" {
			if _, err := os.Stat(symtabPath); err == nil {
				if err := db.LoadSymtab(symtabPath); err != nil {
					return false, err
				}
			}
		}
	}

	baseline := db.Snapshot()

	files, dirMode, err := d.inputFiles(opt)
	if err != nil {
		return false, err
	}

	a, err := d.Registry.Current()
	if err != nil {
		return false, err
	}

	initedPlugins := map[string]bool{}

	for _, f := range files {
		outPath := d.outputPath(opt, f, dirMode)
		d.Log.WithField("file", f).Debug("processing file")
		if err := d.processFile(opt, f, outPath, a, db, initedPlugins); err != nil {
			var unknown *pass.UnknownPassError
			if errors.As(err, &unknown) {
				// An unresolvable pass/plugin name is a configuration
				// mistake, not a transformation failure: it is reported
				// unwrapped, with no filename prepended, before any output
				// file is opened.
				return false, &ConfigError{Msg: unknown.Error()}
			}
			return false, wrapFile(f, err)
		}
	}

	if disabled {
		return false, nil
	}

	changed := !funcdb.Equal(baseline, db)
	if changed {
		d.Log.WithField("funcdb", liveFuncdbPath).Debug("saving funcdb")
		if err := db.Save(liveFuncdbPath); err != nil {
			return false, err
		}
	}
	return changed, nil
}

// inputFiles returns the ordered list of PseudoC files to process: either
// opt.Input itself (file mode) or its *.lst children, sorted for
// deterministic directory-mode ordering (§6: "selects children whose name
// ends in .lst").
func (d *Driver) inputFiles(opt Options) (files []string, dirMode bool, err error) {
	info, err := os.Stat(opt.Input)
	if err != nil {
		return nil, false, &IOError{Path: opt.Input, Err: err}
	}
	if !info.IsDir() {
		return []string{opt.Input}, false, nil
	}

	entries, err := os.ReadDir(opt.Input)
	if err != nil {
		return nil, false, &IOError{Path: opt.Input, Err: err}
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), listingSuffix) {
			continue
		}
		files = append(files, filepath.Join(opt.Input, e.Name()))
	}
	sort.Strings(files)
	return files, true, nil
}

// outputPath derives the per-file output path, per §4.5 step 3: in
// directory mode, either join the output directory with the child's
// basename, or append the output suffix to the input path when no output
// directory was given. In single-file mode, opt.Output is used verbatim (or
// "" for stdout).
func (d *Driver) outputPath(opt Options, inputFile string, dirMode bool) string {
	if !dirMode {
		return opt.Output
	}
	if opt.Output != "" {
		return filepath.Join(opt.Output, filepath.Base(inputFile))
	}
	return inputFile + opt.OutputSuffix
}

// processFile implements §4.5 step 4, the single-file procedure: parse,
// optional debug dump of the initial CFG, run the resolved script, optional
// debug dump of the final CFG, render in the requested format, and update
// the funcdb from the finished CFG.
func (d *Driver) processFile(opt Options, inputFile, outPath string, a arch.Architecture, db *funcdb.DB, initedPlugins map[string]bool) error {
	cfg, err := cfgmodel.Parse(inputFile)
	if err != nil {
		return err
	}

	if opt.Debug {
		if err := d.dumpDebug(cfg, a, inputFile+".0", opt); err != nil {
			return err
		}
	}

	steps := resolveScript(cfg, opt)
	if err := d.initNewPlugins(steps, initedPlugins); err != nil {
		return err
	}

	ctx := &pass.Context{CFG: cfg, DB: db, Arch: a}
	if err := d.Interp.Run(steps, ctx); err != nil {
		return err
	}

	if opt.Debug {
		if err := d.dumpDebug(cfg, a, inputFile+".out", opt); err != nil {
			return err
		}
	}

	if err := d.render(cfg, a, outPath, opt); err != nil {
		return err
	}

	updateFromCFG(db, cfg)
	return nil
}

// resolveScript implements §4.4's script-replacement rule: a non-empty
// Options.Scripts (CLI `--script`) always wins over any script the parser
// extracted from the input file, each naming an external-script plugin.
func resolveScript(cfg *cfgmodel.CFG, opt Options) []cfgmodel.Step {
	if len(opt.Scripts) == 0 {
		return cfg.ParserScript
	}
	steps := make([]cfgmodel.Step, len(opt.Scripts))
	for i, name := range opt.Scripts {
		steps[i] = cfgmodel.Step{Kind: cfgmodel.ExternalScript, Name: name}
	}
	return steps
}

// initNewPlugins calls Init on every external-script plugin named in steps
// that has not yet been inited this iteration (§4.5 step 2: "if an external
// script defines init(), call it now", once per iteration).
func (d *Driver) initNewPlugins(steps []cfgmodel.Step, initedPlugins map[string]bool) error {
	var fresh []string
	for _, s := range steps {
		if s.Kind == cfgmodel.ExternalScript && !initedPlugins[s.Name] {
			fresh = append(fresh, s.Name)
			initedPlugins[s.Name] = true
		}
	}
	if len(fresh) == 0 {
		return nil
	}
	return d.Interp.InitPlugins(fresh)
}

// updateFromCFG extracts the Funcdb record for cfg's entry function and
// writes it back, ensuring one exists even if no pass in this run's script
// touched it (§4.2's `update_from_cfg`).
func updateFromCFG(db *funcdb.DB, cfg *cfgmodel.CFG) {
	if db.Disabled {
		return
	}
	rec, ok := db.Get(cfg.EntryFuncAddr)
	if !ok {
		rec = funcdb.NewRecord(cfg.EntryFuncName)
	}
	db.Set(cfg.EntryFuncAddr, rec)
}

// render implements the output-format branch of §4.5: `none` opens no
// output file at all; the other three formats render through the printer
// package and are written to outPath, or stdout when outPath is empty.
func (d *Driver) render(cfg *cfgmodel.CFG, a arch.Architecture, outPath string, opt Options) error {
	if opt.Format == FormatNone {
		return nil
	}

	w, close, err := openOutput(outPath)
	if err != nil {
		return err
	}
	defer close()

	switch opt.Format {
	case FormatBblocks:
		return printer.Bblocks(w, cfg, a, opt.Printer)
	case FormatAsm:
		return printer.Asm(w, cfg, a, opt.Printer)
	case FormatC:
		return printer.C(w, cfg, a, opt.Printer)
	default:
		return &ConfigError{Msg: fmt.Sprintf("unknown output format: %s", opt.Format)}
	}
}

// openOutput opens outPath for writing, or returns os.Stdout when outPath is
// empty. The returned close func is always safe to call.
func openOutput(outPath string) (*os.File, func(), error) {
	if outPath == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.OpenFile(outPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, &IOError{Path: outPath, Err: err}
	}
	return f, func() { f.Close() }, nil
}

// dumpDebug writes the bblocks and dot dumps for one debug checkpoint
// (`<prefix>.bb`, `<prefix>.dot`), scoped to this call and closed before
// returning, per §5's "debug file streams... closed before the next
// pipeline step".
func (d *Driver) dumpDebug(cfg *cfgmodel.CFG, a arch.Architecture, prefix string, opt Options) error {
	bbPath := prefix + ".bb"
	bbFile, err := os.OpenFile(bbPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return &IOError{Path: bbPath, Err: err}
	}
	defer bbFile.Close()
	if err := printer.Bblocks(bbFile, cfg, a, opt.Printer); err != nil {
		return err
	}

	dotPath := prefix + ".dot"
	dotFile, err := os.OpenFile(dotPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return &IOError{Path: dotPath, Err: err}
	}
	defer dotFile.Close()
	return printer.Dot(dotFile, cfg, opt.Printer)
}
