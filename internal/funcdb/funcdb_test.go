package funcdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/insanitus/scratchablock/internal/arch"
)

func TestSerializationRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "funcdb.yaml")

	db := New()
	db.Set(0x1000, Record{
		Name:   "main",
		Params: arch.RegSeq{"a2", "a3"},
		Ret:    arch.RegSeq{"a2"},
		Save:   arch.RegSeq{"a12", "sp"},
		Props:  map[string]any{"leaf": true, "calls": []any{"foo", "bar"}},
	})
	db.Set(0x2000, Record{Name: "foo", Props: map[string]any{}})

	if err := db.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := New()
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !Equal(db, loaded) {
		t.Fatalf("round-tripped db not equal to original:\n%#v\n%#v", db.byAddr, loaded.byAddr)
	}
}

func TestLoadOverridesByKeyInOrder(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.yaml")
	p2 := filepath.Join(dir, "b.yaml")

	base := New()
	base.Set(1, Record{Name: "old", Props: map[string]any{}})
	if err := base.Save(p1); err != nil {
		t.Fatal(err)
	}

	override := New()
	override.Set(1, Record{Name: "new", Props: map[string]any{}})
	if err := override.Save(p2); err != nil {
		t.Fatal(err)
	}

	merged := New()
	if err := merged.Load(p1, p2); err != nil {
		t.Fatal(err)
	}
	rec, ok := merged.Get(1)
	if !ok || rec.Name != "new" {
		t.Fatalf("expected later file to override, got %+v", rec)
	}
}

func TestAtomicSavePreservesOriginalOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "funcdb.yaml")

	db := New()
	db.Set(1, Record{Name: "first", Props: map[string]any{}})
	if err := db.Save(path); err != nil {
		t.Fatal(err)
	}
	original, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// Make the directory read-only so Save cannot create its temp file
	// there, simulating a failed write before anything is renamed.
	if err := os.Chmod(dir, 0o500); err != nil {
		t.Skipf("cannot restrict directory permissions in this environment: %v", err)
	}
	defer os.Chmod(dir, 0o700)

	db.Set(2, Record{Name: "second", Props: map[string]any{}})
	_ = db.Save(path)

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(after) != string(original) {
		t.Fatalf("original file was modified despite failed save")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	db := New()
	db.Set(1, Record{Name: "f", Props: map[string]any{"k": "v"}})

	snap := db.Snapshot()
	if !Equal(db, snap) {
		t.Fatal("snapshot should initially equal source")
	}

	db.Set(1, Record{Name: "f", Props: map[string]any{"k": "changed"}})
	db.Set(2, Record{Name: "g", Props: map[string]any{}})

	if Equal(db, snap) {
		t.Fatal("mutating db after Snapshot must not affect the snapshot")
	}

	rec, _ := snap.Get(1)
	if rec.Props["k"] != "v" {
		t.Fatalf("snapshot prop mutated: got %v", rec.Props["k"])
	}
}

func TestDisabledFuncdbIsNoOp(t *testing.T) {
	db := NewDisabled()
	if err := db.Load("/nonexistent/path.yaml"); err != nil {
		t.Fatalf("disabled Load should be a no-op, got %v", err)
	}
	if err := db.Save("/nonexistent/path.yaml"); err != nil {
		t.Fatalf("disabled Save should be a no-op, got %v", err)
	}
	other := New()
	if !Equal(db, other) {
		t.Fatal("disabled funcdb must always report no change")
	}
}

func TestLoadOptionalSkipsMissing(t *testing.T) {
	db := New()
	if err := db.LoadOptional(filepath.Join(t.TempDir(), "missing.yaml.in")); err != nil {
		t.Fatalf("LoadOptional on missing file should not error: %v", err)
	}
}

func TestRecordEqualityOrderInsensitiveSave(t *testing.T) {
	a := Record{Save: arch.RegSeq{"a12", "a13"}, Props: map[string]any{}}
	b := Record{Save: arch.RegSeq{"a13", "a12"}, Props: map[string]any{}}
	if !a.Equal(b) {
		t.Fatal("save-set equality should be order-insensitive")
	}

	c := Record{Params: arch.RegSeq{"a2", "a3"}, Props: map[string]any{}}
	d := Record{Params: arch.RegSeq{"a3", "a2"}, Props: map[string]any{}}
	if c.Equal(d) {
		t.Fatal("param-sequence equality should be order-sensitive")
	}
}

func TestLoadSymtab(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "symtab.txt")
	if err := os.WriteFile(path, []byte("0x1000 main\n0x2000 helper\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	db := New()
	if err := db.LoadSymtab(path); err != nil {
		t.Fatalf("LoadSymtab: %v", err)
	}
	rec, ok := db.Get(0x1000)
	if !ok || rec.Name != "main" {
		t.Fatalf("expected main at 0x1000, got %+v ok=%v", rec, ok)
	}
	byName := db.ByName()
	if byName["helper"] != 0x2000 {
		t.Fatalf("ByName index missing helper: %v", byName)
	}
}

func TestLoadSymtabMalformedLineIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "symtab.txt")
	if err := os.WriteFile(path, []byte("not-a-valid-line\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	db := New()
	if err := db.LoadSymtab(path); err == nil {
		t.Fatal("expected FormatError on malformed symtab line")
	}
}
