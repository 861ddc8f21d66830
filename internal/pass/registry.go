// Package pass implements the Pass Registry & Script Interpreter (§4.4): it
// resolves named passes to callable pass-objects of three arities
// (whole-CFG, per-block, per-inst) and executes an ordered script.
package pass

import (
	"fmt"

	"github.com/insanitus/scratchablock/internal/arch"
	"github.com/insanitus/scratchablock/internal/cfgmodel"
	"github.com/insanitus/scratchablock/internal/funcdb"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Context bundles the state a pass operates on: the CFG being transformed,
// the shared Funcdb, and the loaded Architecture.
type Context struct {
	CFG  *cfgmodel.CFG
	DB   *funcdb.DB
	Arch arch.Architecture
}

// WholeCFGPass transforms an entire CFG in one call.
type WholeCFGPass func(ctx *Context) error

// PerBlockPass transforms one basic block; the interpreter drives it over
// every block via cfgmodel.ForeachBlock.
type PerBlockPass func(ctx *Context, b *cfgmodel.BasicBlock) error

// PerInstPass transforms one instruction; the interpreter drives it over
// every instruction via cfgmodel.ForeachInst.
type PerInstPass func(ctx *Context, i *cfgmodel.Inst) error

// Plugin is the external-script interface (§4.4, §9 "plugin interface with
// two optional entry points"). Apply runs the plugin against a CFG once per
// script execution.
type Plugin interface {
	Apply(ctx *Context) error
}

// Initializer is the optional second entry point a Plugin may implement. If
// present, Init is called once at the start of every pipeline iteration,
// useful for resetting an accumulator so that per-iteration facts compute a
// lower bound rather than a union-over-time (§4.4).
type Initializer interface {
	Init()
}

// UnknownPassError reports a script step naming a pass or plugin the
// registry has no entry for.
type UnknownPassError struct {
	Kind cfgmodel.StepKind
	Name string
}

func (e *UnknownPassError) Error() string {
	return fmt.Sprintf("unknown %s: %s", e.Kind, e.Name)
}

// ----------------------------
// ----- Builtin registry -----
// ----------------------------
//
// Builtin passes register themselves here from an init() in their own file
// (see builtin.go): no dynamic lookup by global symbol table, per §9.

var wholeCFGPasses = map[string]WholeCFGPass{}
var perBlockPasses = map[string]PerBlockPass{}
var perInstPasses = map[string]PerInstPass{}

// RegisterWholeCFG adds a named whole-CFG pass to the builtin registry.
func RegisterWholeCFG(name string, p WholeCFGPass) { wholeCFGPasses[name] = p }

// RegisterPerBlock adds a named per-block pass to the builtin registry.
func RegisterPerBlock(name string, p PerBlockPass) { perBlockPasses[name] = p }

// RegisterPerInst adds a named per-inst pass to the builtin registry.
func RegisterPerInst(name string, p PerInstPass) { perInstPasses[name] = p }

// ----------------------------
// ----- Script Interpreter ---
// ----------------------------

// Interpreter executes a Script (an ordered []cfgmodel.Step) against a
// Context, resolving whole-CFG/per-block/per-inst steps through the builtin
// registry above and external-script steps through its own plugin table.
type Interpreter struct {
	plugins map[string]Plugin
}

// NewInterpreter returns an Interpreter with no plugins registered.
func NewInterpreter() *Interpreter {
	return &Interpreter{plugins: map[string]Plugin{}}
}

// RegisterPlugin adds a named external-script plugin, resolved when a
// Script contains an ExternalScript step with this name.
func (in *Interpreter) RegisterPlugin(name string, p Plugin) {
	in.plugins[name] = p
}

// InitPlugins calls Init on every named plugin that implements Initializer.
// Called once at the start of every pipeline iteration (§4.5 step 2).
func (in *Interpreter) InitPlugins(names []string) error {
	for _, name := range names {
		p, ok := in.plugins[name]
		if !ok {
			return &UnknownPassError{Kind: cfgmodel.ExternalScript, Name: name}
		}
		if initr, ok := p.(Initializer); ok {
			initr.Init()
		}
	}
	return nil
}

// Run executes steps against ctx in order, stopping at the first error: a
// pass failure aborts the remaining steps in this script (§4.4's error
// policy). The caller (the Pipeline Driver) is responsible for prepending
// the input filename to the returned error.
func (in *Interpreter) Run(steps []cfgmodel.Step, ctx *Context) error {
	for _, s := range steps {
		if err := in.runOne(s, ctx); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) runOne(s cfgmodel.Step, ctx *Context) error {
	switch s.Kind {
	case cfgmodel.WholeCFGPass:
		p, ok := wholeCFGPasses[s.Name]
		if !ok {
			return &UnknownPassError{Kind: s.Kind, Name: s.Name}
		}
		return p(ctx)

	case cfgmodel.PerBlockPass:
		p, ok := perBlockPasses[s.Name]
		if !ok {
			return &UnknownPassError{Kind: s.Kind, Name: s.Name}
		}
		var firstErr error
		cfgmodel.ForeachBlock(ctx.CFG, func(b *cfgmodel.BasicBlock) {
			if firstErr != nil {
				return
			}
			firstErr = p(ctx, b)
		})
		return firstErr

	case cfgmodel.PerInstPass:
		p, ok := perInstPasses[s.Name]
		if !ok {
			return &UnknownPassError{Kind: s.Kind, Name: s.Name}
		}
		var firstErr error
		cfgmodel.ForeachInst(ctx.CFG, func(i *cfgmodel.Inst) {
			if firstErr != nil {
				return
			}
			firstErr = p(ctx, i)
		})
		return firstErr

	case cfgmodel.ExternalScript:
		p, ok := in.plugins[s.Name]
		if !ok {
			return &UnknownPassError{Kind: s.Kind, Name: s.Name}
		}
		return p.Apply(ctx)

	default:
		return fmt.Errorf("unknown script step kind: %s", s.Kind)
	}
}
