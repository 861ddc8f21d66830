package pipeline

import (
	"os"
	"path/filepath"
)

// funcdbFileName and symtabFileName are the fixed basenames a project
// directory is searched for (§6's "Project layout assumed by the driver").
const (
	funcdbFileName = "funcdb.yaml"
	symtabFileName = "symtab.txt"
)

// ResolveProject derives the project directory from the input path when
// --funcdb is unset: the input directory itself in directory mode, or the
// input file's containing directory in file mode. It returns the funcdb
// path and the symtab path to try loading (the caller checks existence of
// the latter; LoadSymtab's absence is not an error, §6).
func ResolveProject(inputPath string) (funcdbPath, symtabPath string, err error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return "", "", &IOError{Path: inputPath, Err: err}
	}
	dir := inputPath
	if !info.IsDir() {
		dir = filepath.Dir(inputPath)
	}
	return filepath.Join(dir, funcdbFileName), filepath.Join(dir, symtabFileName), nil
}
