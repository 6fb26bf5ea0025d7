// Package scanner turns stdin or a list of file/directory operands into a
// sequence of newline-delimited lines, one Source per file. It is a
// surrounding collaborator of internal/patterns: it knows nothing about
// pattern matching, only about producing lines.
package scanner

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Source is one input file's lines, read eagerly so a read error on one
// file never prevents the caller from continuing to the next.
type Source struct {
	Path  string // "" for stdin
	Lines []string
	Err   error
}

// Stdin reads all of standard input as a single Source, split into lines
// with trailing newlines stripped.
func Stdin(r io.Reader) Source {
	lines, err := readLines(r)
	if err != nil {
		return Source{Err: errors.Wrap(err, "read stdin")}
	}
	return Source{Lines: lines}
}

// Files resolves operands into concrete file paths — expanding directories
// when recursive is true — and reads each one into a Source. Operands keep
// the order they were given in; the files found under a directory follow
// in lexical order. A single operand that is a plain file and not a directory is read
// as-is regardless of recursive.
func Files(operands []string, recursive bool) ([]Source, error) {
	paths, err := resolvePaths(operands, recursive)
	if err != nil {
		return nil, err
	}

	sources := make([]Source, len(paths))
	for i, p := range paths {
		sources[i] = readFile(p)
	}
	return sources, nil
}

func resolvePaths(operands []string, recursive bool) ([]string, error) {
	var paths []string
	for _, operand := range operands {
		info, err := os.Stat(operand)
		if err != nil {
			// Defer the error to the per-file read so one bad operand
			// doesn't abort resolution of the others.
			paths = append(paths, operand)
			continue
		}
		if !info.IsDir() {
			paths = append(paths, operand)
			continue
		}
		if !recursive {
			paths = append(paths, operand)
			continue
		}
		walked, err := walkDir(operand)
		if err != nil {
			return nil, errors.Wrapf(err, "walk %s", operand)
		}
		paths = append(paths, walked...)
	}
	return paths, nil
}

// walkDir lists every regular file under root. filepath.WalkDir already
// visits entries in lexical order within each directory, so the result
// needs no further sorting.
func walkDir(root string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		found = append(found, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func readFile(path string) Source {
	f, err := os.Open(path)
	if err != nil {
		return Source{Path: path, Err: errors.Wrapf(err, "open %s", path)}
	}
	defer f.Close()

	lines, err := readLines(f)
	if err != nil {
		return Source{Path: path, Err: errors.Wrapf(err, "read %s", path)}
	}
	return Source{Path: path, Lines: lines}
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
