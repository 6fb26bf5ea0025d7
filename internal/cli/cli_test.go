package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briantigerchow/gorep/internal/cli"
)

func run(t *testing.T, stdin string, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	code = cli.Run(args, strings.NewReader(stdin), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestStdinMatchExitsZero(t *testing.T) {
	_, _, code := run(t, "hello world\n", "-E", "wor.d")
	assert.Equal(t, 0, code)
}

func TestStdinNoMatchExitsOne(t *testing.T) {
	_, _, code := run(t, "hello world\n", "-E", "xyz")
	assert.Equal(t, 1, code)
}

func TestMalformedPatternExitsTwo(t *testing.T) {
	_, stderr, code := run(t, "anything\n", "-E", "[abc")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "malformed pattern")
}

func TestNoPatternIsUsageError(t *testing.T) {
	_, _, code := run(t, "anything\n")
	assert.Equal(t, 2, code)
}

func TestSingleFileHasNoPathPrefix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("foo\nbar\n"), 0o644))

	stdout, _, code := run(t, "", "-E", "foo", path)
	assert.Equal(t, 0, code)
	assert.Equal(t, "foo\n", stdout)
}

func TestMultiFileHasPathPrefix(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.txt")
	pathB := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(pathA, []byte("foo\n"), 0o644))
	require.NoError(t, os.WriteFile(pathB, []byte("foo\n"), 0o644))

	stdout, _, code := run(t, "", "-E", "foo", pathA, pathB)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, pathA+":foo")
	assert.Contains(t, stdout, pathB+":foo")
}

func TestLineNumberFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("nope\nfoo\n"), 0o644))

	stdout, _, code := run(t, "", "-E", "foo", "-n", path)
	assert.Equal(t, 0, code)
	assert.Equal(t, "2:foo\n", stdout)
}

func TestInvertFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("foo\nbar\n"), 0o644))

	stdout, _, code := run(t, "", "-E", "foo", "-v", path)
	assert.Equal(t, 0, code)
	assert.Equal(t, "bar\n", stdout)
}

func TestCountFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("foo\nfoo\nbar\n"), 0o644))

	stdout, _, code := run(t, "", "-E", "foo", "-c", path)
	assert.Equal(t, 0, code)
	assert.Equal(t, "2\n", stdout)
}

func TestRecursiveFlagWalksDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("foo\n"), 0o644))
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.txt"), []byte("foo\n"), 0o644))

	stdout, _, code := run(t, "", "-E", "foo", "-r", dir)
	assert.Equal(t, 0, code)
	assert.Equal(t, 2, strings.Count(stdout, "foo"))
}

func TestConcurrentScanMatchesSequentialOutput(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 8; i++ {
		p := filepath.Join(dir, "f"+string(rune('a'+i))+".txt")
		require.NoError(t, os.WriteFile(p, []byte("foo\nbar\n"), 0o644))
		paths = append(paths, p)
	}

	args := append([]string{"-E", "foo"}, paths...)
	stdout, _, code := run(t, "", args...)
	assert.Equal(t, 0, code)
	assert.Equal(t, 8, strings.Count(stdout, "foo"))

	var sequential strings.Builder
	for _, p := range paths {
		sequential.WriteString(p + ":foo\n")
	}
	assert.Equal(t, sequential.String(), stdout)
}
