// Package pipeline implements the Pipeline Driver (§4.5): the outermost loop
// that, for each input function, loads/snapshots the funcdb, runs a script
// against the parsed CFG, renders it in the requested output format, and
// decides whether to persist funcdb changes and whether to iterate.
package pipeline

import "fmt"

// ConfigError reports a driver-level misconfiguration: an unknown output
// format, an unknown pass or plugin name named by a script, or any other
// flag combination the driver itself rejects before touching an
// architecture, a funcdb, or a file. It is never wrapped in a PassError: an
// unresolvable name is a mistake in the script or command line, not a
// transformation failure tied to one input file.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "config error: " + e.Msg }

// IOError reports a failure of the driver's own file I/O: reading the input
// path, or opening an output or debug-dump file. Collaborator packages
// (funcdb, cfgmodel) report their I/O failures with their own IOError types.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("io error: %s: %s", e.Path, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// FormatError reports a driver-level formatting problem, as distinct from
// the collaborator FormatErrors (cfgmodel's parser, funcdb's loader) the
// driver propagates unmodified.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string { return "format error: " + e.Msg }

// PassError wraps a resolved pass's execution failure with the input
// filename, per §4.4's "a pass failure aborts the current function with the
// input filename prepended" and §7's "Error while processing file: X"
// policy. It unwraps to the original error so callers can still errors.As
// onto the underlying typed error kind. An unresolvable pass/plugin name
// (*pass.UnknownPassError) is intercepted by the driver before reaching
// wrapFile and surfaces as a ConfigError instead; see runOneIteration.
type PassError struct {
	File string
	Err  error
}

func (e *PassError) Error() string {
	return fmt.Sprintf("error while processing file %s: %s", e.File, e.Err)
}
func (e *PassError) Unwrap() error { return e.Err }

func wrapFile(file string, err error) error {
	if err == nil {
		return nil
	}
	return &PassError{File: file, Err: err}
}
