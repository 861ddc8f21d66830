// Command scratchablock is the pipeline driver's command-line entry point:
// it parses the flags of §6, builds a pipeline.Options, and runs the Driver
// once or to a fixed point.
package main

import (
	"fmt"
	"os"

	"github.com/insanitus/scratchablock/internal/pipeline"
	"github.com/insanitus/scratchablock/internal/printer"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func buildOptions(ctx *cli.Context) (pipeline.Options, error) {
	if ctx.NArg() != 1 {
		return pipeline.Options{}, &pipeline.ConfigError{Msg: "expected exactly one input file or directory argument"}
	}
	return pipeline.Options{
		Input:        ctx.Args().Get(0),
		Output:       ctx.String("output"),
		Arch:         ctx.String("arch"),
		Scripts:      ctx.StringSlice("script"),
		Iter:         ctx.Bool("iter"),
		FuncdbPath:   ctx.String("funcdb"),
		Format:       ctx.String("format"),
		OutputSuffix: ctx.String("output-suffix"),
		Debug:        ctx.Bool("debug"),
		Printer: printer.Options{
			NoDead:        ctx.Bool("no-dead"),
			NoComments:    ctx.Bool("no-comments"),
			NoGraphHeader: ctx.Bool("no-graph-header"),
			AnnotateCalls: ctx.Bool("annotate-calls"),
			InstAddr:      ctx.Bool("inst-addr"),
			DotInst:       ctx.Bool("dot-inst"),
			Repr:          ctx.Bool("repr"),
		},
	}, nil
}

// run drives one command invocation: build options, load the log level,
// construct a Driver, and execute the pipeline.
func run(ctx *cli.Context) error {
	log := logrus.New()
	if lvl := ctx.String("log-level"); lvl != "" {
		parsed, err := logrus.ParseLevel(lvl)
		if err != nil {
			return &pipeline.ConfigError{Msg: fmt.Sprintf("bad --log-level %q: %s", lvl, err)}
		}
		log.SetLevel(parsed)
	}

	opt, err := buildOptions(ctx)
	if err != nil {
		return err
	}

	d := pipeline.NewDriver()
	d.Log = log

	_, err = d.Run(opt)
	return err
}

func main() {
	app := &cli.App{
		Name:  "scratchablock",
		Usage: "apply a pass script to a PseudoC function and render the result",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file (single-file mode) or directory (dir mode)"},
			&cli.StringFlag{Name: "arch", Value: "xtensa", Usage: "architecture to load"},
			&cli.StringSliceFlag{Name: "script", Usage: "external script to apply (repeatable); overrides a file-embedded script"},
			&cli.BoolFlag{Name: "iter", Usage: "iterate the whole driver until funcdb is unchanged"},
			&cli.StringFlag{Name: "funcdb", Usage: "funcdb path; \"none\" disables funcdb entirely"},
			&cli.StringFlag{Name: "format", Value: pipeline.FormatBblocks, Usage: "output format: none, bblocks, asm, c"},
			&cli.StringFlag{Name: "output-suffix", Value: ".out", Usage: "suffix for derived output filenames in dir mode"},
			&cli.BoolFlag{Name: "no-dead", Usage: "elide instructions marked dead"},
			&cli.BoolFlag{Name: "no-comments", Usage: "elide decompilation annotations"},
			&cli.BoolFlag{Name: "no-graph-header", Usage: "elide graph-property header in bblocks format"},
			&cli.BoolFlag{Name: "annotate-calls", Usage: "annotate calls with use/def sets"},
			&cli.BoolFlag{Name: "inst-addr", Usage: "show instruction addresses"},
			&cli.BoolFlag{Name: "dot-inst", Usage: "include instruction text in .dot nodes"},
			&cli.BoolFlag{Name: "repr", Usage: "use debug-repr printer for expressions/instructions"},
			&cli.BoolFlag{Name: "debug", Usage: "write <in>.0.bb, <in>.0.dot, <in>.out.bb, <in>.out.dot around processing"},
			&cli.StringFlag{Name: "log-level", Usage: "logging threshold"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
