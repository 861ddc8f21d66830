package cfgmodel

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// FormatError reports a malformed PseudoC input file.
type FormatError struct {
	Path string
	Line int
	Msg  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error: %s:%d: %s", e.Path, e.Line, e.Msg)
}

// IOError reports a failure reading a PseudoC input file.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("io error: %s: %s", e.Path, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// Parse reads a PseudoC file and builds its CFG (§4.3's `parse(file) ->
// cfg`).
//
// Grammar, one construct per line:
//
//	func ADDR NAME                 -- required first line
//	script:                        -- optional, followed by indented steps
//	    xform: NAME                -- whole-cfg-pass
//	    xform_bblock: NAME         -- per-block-pass
//	    xform_inst: NAME           -- per-inst-pass
//	    script: NAME               -- external-script
//	block LABEL                    -- starts a basic block
//	    ADDR: TEXT                 -- one instruction, indented
//	edges:                         -- optional, followed by indented edges
//	    FROM -> TO
//
// Blank lines and lines starting with # are ignored outside of the inline
// instruction text itself.
func Parse(path string) (*CFG, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	defer f.Close()

	var cfg *CFG
	var curBlock *BasicBlock
	section := ""
	lineNo := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		indented := raw != trimmed && (strings.HasPrefix(raw, " ") || strings.HasPrefix(raw, "\t"))

		switch {
		case cfg == nil:
			fields := strings.Fields(trimmed)
			if len(fields) < 3 || fields[0] != "func" {
				return nil, &FormatError{Path: path, Line: lineNo, Msg: "expected \"func ADDR NAME\" as first line"}
			}
			addr, err := strconv.ParseInt(fields[1], 0, 64)
			if err != nil {
				return nil, &FormatError{Path: path, Line: lineNo, Msg: fmt.Sprintf("bad address %q: %s", fields[1], err)}
			}
			cfg = NewCFG(addr, strings.Join(fields[2:], " "))

		case !indented && trimmed == "script:":
			section = "script"

		case !indented && trimmed == "edges:":
			section = "edges"

		case !indented && strings.HasPrefix(trimmed, "block "):
			section = "block"
			label := strings.TrimSpace(strings.TrimPrefix(trimmed, "block "))
			if label == "" {
				return nil, &FormatError{Path: path, Line: lineNo, Msg: "block with no label"}
			}
			curBlock = cfg.AddBlock(label)

		case section == "script" && indented:
			step, err := parseStep(trimmed)
			if err != nil {
				return nil, &FormatError{Path: path, Line: lineNo, Msg: err.Error()}
			}
			cfg.ParserScript = append(cfg.ParserScript, step)

		case section == "edges" && indented:
			from, to, err := parseEdge(trimmed)
			if err != nil {
				return nil, &FormatError{Path: path, Line: lineNo, Msg: err.Error()}
			}
			cfg.AddEdge(from, to)

		case section == "block" && indented:
			if curBlock == nil {
				return nil, &FormatError{Path: path, Line: lineNo, Msg: "instruction line outside any block"}
			}
			inst, err := parseInst(trimmed)
			if err != nil {
				return nil, &FormatError{Path: path, Line: lineNo, Msg: err.Error()}
			}
			curBlock.Insts = append(curBlock.Insts, inst)

		default:
			return nil, &FormatError{Path: path, Line: lineNo, Msg: fmt.Sprintf("unexpected line: %q", trimmed)}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	if cfg == nil {
		return nil, &FormatError{Path: path, Line: lineNo, Msg: "empty input, expected \"func ADDR NAME\""}
	}
	return cfg, nil
}

func parseStep(line string) (Step, error) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return Step{}, fmt.Errorf("expected \"kind: name\" script step, got %q", line)
	}
	kindTok := strings.TrimSpace(line[:idx])
	name := strings.TrimSpace(line[idx+1:])
	if name == "" {
		return Step{}, fmt.Errorf("script step %q has no pass name", line)
	}
	var kind StepKind
	switch kindTok {
	case "xform":
		kind = WholeCFGPass
	case "xform_bblock":
		kind = PerBlockPass
	case "xform_inst":
		kind = PerInstPass
	case "script":
		kind = ExternalScript
	default:
		return Step{}, fmt.Errorf("unknown script step kind %q", kindTok)
	}
	return Step{Kind: kind, Name: name}, nil
}

func parseEdge(line string) (from, to string, err error) {
	parts := strings.SplitN(line, "->", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("expected \"FROM -> TO\", got %q", line)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

func parseInst(line string) (*Inst, error) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return nil, fmt.Errorf("expected \"ADDR: TEXT\" instruction, got %q", line)
	}
	addrTok := strings.TrimSpace(line[:idx])
	text := strings.TrimSpace(line[idx+1:])
	addr, err := strconv.ParseInt(addrTok, 0, 64)
	if err != nil {
		return nil, fmt.Errorf("bad instruction address %q: %s", addrTok, err)
	}
	return &Inst{Addr: addr, Text: text}, nil
}
