package cfgmodel

import (
	"os"
	"path/filepath"
	"testing"
)

func writeLst(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseSimpleFunction(t *testing.T) {
	dir := t.TempDir()
	path := writeLst(t, dir, "foo.lst", `func 0x1000 foo
block entry
    0x1000: mov a2, a3
    0x1004: ret
`)

	cfg, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.EntryFuncAddr != 0x1000 || cfg.EntryFuncName != "foo" {
		t.Fatalf("unexpected entry: %#v", cfg)
	}
	if len(cfg.Blocks) != 1 || len(cfg.Blocks[0].Insts) != 2 {
		t.Fatalf("unexpected blocks: %#v", cfg.Blocks)
	}
	if len(cfg.ParserScript) != 0 {
		t.Fatalf("expected empty parser script, got %v", cfg.ParserScript)
	}
}

func TestParseWithScriptAndEdges(t *testing.T) {
	dir := t.TempDir()
	path := writeLst(t, dir, "bar.lst", `func 0x2000 bar
script:
    xform: propagateConstants
    xform_bblock: markDeadBlock
    xform_inst: markDeadInst
    script: myPlugin
block entry
    0x2000: jmp exit
block exit
    0x2004: ret
edges:
    entry -> exit
`)
	cfg, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cfg.ParserScript) != 4 {
		t.Fatalf("expected 4 script steps, got %d: %v", len(cfg.ParserScript), cfg.ParserScript)
	}
	wantKinds := []StepKind{WholeCFGPass, PerBlockPass, PerInstPass, ExternalScript}
	for i, k := range wantKinds {
		if cfg.ParserScript[i].Kind != k {
			t.Fatalf("step %d: got kind %s, want %s", i, cfg.ParserScript[i].Kind, k)
		}
	}
	if len(cfg.Edges) != 1 || cfg.Edges[0].From != "entry" || cfg.Edges[0].To != "exit" {
		t.Fatalf("unexpected edges: %v", cfg.Edges)
	}
}

func TestParseMissingFuncLineFails(t *testing.T) {
	dir := t.TempDir()
	path := writeLst(t, dir, "bad.lst", "block entry\n    0x1: nop\n")
	if _, err := Parse(path); err == nil {
		t.Fatal("expected FormatError for missing func header")
	}
}

func TestParseMissingFile(t *testing.T) {
	if _, err := Parse("/no/such/file.lst"); err == nil {
		t.Fatal("expected IOError for missing file")
	}
}
