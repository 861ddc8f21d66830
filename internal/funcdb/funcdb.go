package funcdb

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/insanitus/scratchablock/internal/arch"
	"gopkg.in/yaml.v3"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// DB is the in-memory Funcdb: a mapping from function address to Record,
// plus an auxiliary index by symbolic name. A zero-value DB with Disabled
// set behaves as a no-op database: Load/Save do nothing and Equal always
// reports no change, per §4.2's "funcdb is optional per-run" guarantee.
type DB struct {
	Disabled bool
	byAddr   map[int64]Record
}

// diskDB is the on-disk shape: a list rather than a map, so Save can emit
// entries in canonical ascending-address order and produce meaningful
// textual diffs.
type diskDB struct {
	Funcs []diskRecord `yaml:"funcs"`
}

type diskRecord struct {
	Addr   int64          `yaml:"addr"`
	Name   string         `yaml:"name"`
	Params []string       `yaml:"params"`
	Ret    []string       `yaml:"ret"`
	Save   []string       `yaml:"save"`
	Props  map[string]any `yaml:"props"`
}

// IOError reports a failure reading or writing a funcdb or symtab file.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("io error: %s: %s", e.Path, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// FormatError reports a malformed on-disk funcdb or symtab file.
type FormatError struct {
	Path string
	Msg  string
}

func (e *FormatError) Error() string { return fmt.Sprintf("format error: %s: %s", e.Path, e.Msg) }

// ---------------------
// ----- Functions -----
// ---------------------

// New returns an empty, enabled Funcdb.
func New() *DB {
	return &DB{byAddr: map[int64]Record{}}
}

// NewDisabled returns a Funcdb in the disabled state: all operations are
// no-ops, used when the driver runs with `--funcdb none`.
func NewDisabled() *DB {
	return &DB{Disabled: true, byAddr: map[int64]Record{}}
}

// Load loads paths in order, later files overriding earlier ones by address
// key, and merges the result into db. A missing path that is marked optional
// via LoadOptional is silently skipped; all other missing or malformed paths
// are fatal.
func (db *DB) Load(paths ...string) error {
	if db.Disabled {
		return nil
	}
	for _, p := range paths {
		if err := db.loadOne(p, false); err != nil {
			return err
		}
	}
	return nil
}

// LoadOptional loads path if it exists and silently does nothing if it does
// not, matching §4.2's "missing files are silently skipped only if caller
// marks them optional".
func (db *DB) LoadOptional(path string) error {
	if db.Disabled {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return db.loadOne(path, true)
}

func (db *DB) loadOne(path string, optional bool) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return &IOError{Path: path, Err: err}
	}
	var disk diskDB
	if err := yaml.Unmarshal(b, &disk); err != nil {
		return &FormatError{Path: path, Msg: err.Error()}
	}
	if db.byAddr == nil {
		db.byAddr = map[int64]Record{}
	}
	for _, d := range disk.Funcs {
		db.byAddr[d.Addr] = recordFromDisk(d)
	}
	return nil
}

func recordFromDisk(d diskRecord) Record {
	return Record{
		Name:   d.Name,
		Params: regSeqFromStrings(d.Params),
		Ret:    regSeqFromStrings(d.Ret),
		Save:   regSeqFromStrings(d.Save),
		Props:  cloneProps(d.Props),
	}
}

func regSeqFromStrings(ss []string) arch.RegSeq {
	out := make(arch.RegSeq, 0, len(ss))
	for _, s := range ss {
		out = append(out, arch.Reg(s))
	}
	return out
}

func stringsFromRegSeq(rs arch.RegSeq) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, string(r))
	}
	return out
}

// Save atomically writes db's current contents to path: write to a temp
// file in the same directory, then rename over path. Key order on disk is
// ascending address. A no-op when db is disabled.
func (db *DB) Save(path string) error {
	if db.Disabled {
		return nil
	}
	disk := diskDB{Funcs: make([]diskRecord, 0, len(db.byAddr))}
	addrs := make([]int64, 0, len(db.byAddr))
	for a := range db.byAddr {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	for _, a := range addrs {
		r := db.byAddr[a]
		disk.Funcs = append(disk.Funcs, diskRecord{
			Addr:   a,
			Name:   r.Name,
			Params: stringsFromRegSeq(r.Params),
			Ret:    stringsFromRegSeq(r.Ret),
			Save:   stringsFromRegSeq(r.Save),
			Props:  r.Props,
		})
	}

	out, err := yaml.Marshal(&disk)
	if err != nil {
		return &IOError{Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return &IOError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &IOError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &IOError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &IOError{Path: path, Err: err}
	}
	return nil
}

// Get returns the Record for addr and whether one exists.
func (db *DB) Get(addr int64) (Record, bool) {
	r, ok := db.byAddr[addr]
	return r, ok
}

// Set writes rec as the Record for addr, in memory only: it is not visible
// on disk until Save.
func (db *DB) Set(addr int64, rec Record) {
	if db.byAddr == nil {
		db.byAddr = map[int64]Record{}
	}
	db.byAddr[addr] = rec
}

// ByName returns a read-only index from symbolic name to address, built from
// the current in-memory contents.
func (db *DB) ByName() map[string]int64 {
	out := make(map[string]int64, len(db.byAddr))
	for addr, r := range db.byAddr {
		if r.Name != "" {
			out[r.Name] = addr
		}
	}
	return out
}

// Snapshot returns a deep clone of db, independent of later mutations to db:
// mutating db after Snapshot never changes the returned copy (§3's
// "deeply cloneable" requirement).
func (db *DB) Snapshot() *DB {
	cp := &DB{Disabled: db.Disabled, byAddr: make(map[int64]Record, len(db.byAddr))}
	for a, r := range db.byAddr {
		cp.byAddr[a] = r.clone()
	}
	return cp
}

// Equal reports whether a and b compare structurally equal per §3: same key
// set, and each paired Record compares Equal. A disabled Funcdb always
// reports equal (no-op change detection).
func Equal(a, b *DB) bool {
	if a.Disabled || b.Disabled {
		return true
	}
	if len(a.byAddr) != len(b.byAddr) {
		return false
	}
	for addr, ra := range a.byAddr {
		rb, ok := b.byAddr[addr]
		if !ok || !ra.Equal(rb) {
			return false
		}
	}
	return true
}
