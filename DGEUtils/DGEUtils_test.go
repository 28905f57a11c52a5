package dgeutils

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeThrough(t *testing.T, fname, content string) {
	t.Helper()
	writer, err := ReturnWriter(fname)
	require.NoError(t, err)
	_, err = io.WriteString(writer, content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
}

func TestReturnReaderCompression(t *testing.T) {
	content := "g1\tA\ng2\tB\ng3\n"

	for _, ext := range []string{".txt", ".gz", ".bz2"} {
		t.Run(ext, func(t *testing.T) {
			fname := filepath.Join(t.TempDir(), "genes"+ext)
			writeThrough(t, fname, content)

			ids, err := LoadIndexFile(fname)
			require.NoError(t, err)
			assert.Equal(t, []string{"g1", "g2", "g3"}, ids)

			nbLines, err := CountNbLines(fname)
			require.NoError(t, err)
			assert.Equal(t, 3, nbLines)
		})
	}
}

func TestLoadIndexFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadIndexFile(filepath.Join(dir, "missing.txt"))
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	fname := filepath.Join(dir, "blank.txt")
	require.NoError(t, os.WriteFile(fname, []byte("g1\n\ng2\n"), 0644))

	_, err = LoadIndexFile(fname)
	var formatErr *FormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, 2, formatErr.Line)
}

func TestSplitFields(t *testing.T) {
	testCases := []struct {
		name   string
		line   string
		sep    string
		expect []string
	}{
		{name: "whitespace", line: " 1  2\t3 ", sep: "", expect: []string{"1", "2", "3"}},
		{name: "tab", line: "a\t b\tc", sep: "\t", expect: []string{"a", "b", "c"}},
		{name: "comma keeps empty", line: "a,,c", sep: ",", expect: []string{"a", "", "c"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, SplitFields(tc.line, tc.sep))
		})
	}
}

func TestParseDelimiter(t *testing.T) {
	assert.Equal(t, "\t", ParseDelimiter(`\t`))
	assert.Equal(t, "", ParseDelimiter("whitespace"))
	assert.Equal(t, ",", ParseDelimiter(","))
}

func TestAtomicWriter(t *testing.T) {
	dir := t.TempDir()
	fname := filepath.Join(dir, "out.tsv")
	require.NoError(t, os.WriteFile(fname, []byte("previous\n"), 0644))

	t.Run("abort keeps previous content", func(t *testing.T) {
		writer, err := CreateAtomic(fname)
		require.NoError(t, err)
		_, err = writer.WriteString("partial")
		require.NoError(t, err)
		writer.Abort()

		content, err := os.ReadFile(fname)
		require.NoError(t, err)
		assert.Equal(t, "previous\n", string(content))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("commit replaces content", func(t *testing.T) {
		writer, err := CreateAtomic(fname)
		require.NoError(t, err)
		defer writer.Abort()
		_, err = writer.WriteString("new\n")
		require.NoError(t, err)
		require.NoError(t, writer.Commit())

		content, err := os.ReadFile(fname)
		require.NoError(t, err)
		assert.Equal(t, "new\n", string(content))
	})

	t.Run("compressed", func(t *testing.T) {
		gzName := filepath.Join(dir, "out.tsv.gz")
		writer, err := CreateAtomic(gzName)
		require.NoError(t, err)
		_, err = writer.WriteString("x\ny\n")
		require.NoError(t, err)
		require.NoError(t, writer.Commit())

		ids, err := LoadIndexFile(gzName)
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y"}, ids)
	})

	t.Run("raw ignores extension", func(t *testing.T) {
		rawName := filepath.Join(dir, "raw.gz")
		writer, err := CreateAtomicRaw(rawName)
		require.NoError(t, err)
		_, err = writer.Write([]byte("not gzip"))
		require.NoError(t, err)
		require.NoError(t, writer.Commit())

		content, err := os.ReadFile(rawName)
		require.NoError(t, err)
		assert.Equal(t, "not gzip", string(content))
		assert.True(t, FileExists(rawName))
		assert.Contains(t, Describe(rawName), "(8 bytes)")
	})

	t.Run("unwritable directory", func(t *testing.T) {
		_, err := CreateAtomic(filepath.Join(dir, "missing", "out.tsv"))
		var ioErr *IOError
		assert.True(t, errors.As(err, &ioErr))
	})
}

func TestCommitAllIsAllOrNothing(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.tsv")
	blocked := filepath.Join(dir, "blocked.tsv")
	require.NoError(t, os.WriteFile(first, []byte("previous\n"), 0644))
	// a directory cannot be replaced by a file
	require.NoError(t, os.Mkdir(blocked, 0755))

	var writers []*AtomicWriter

	for _, fname := range []string{blocked, first} {
		writer, err := CreateAtomic(fname)
		require.NoError(t, err)
		_, err = writer.WriteString("new\n")
		require.NoError(t, err)
		writers = append(writers, writer)
	}

	var ioErr *IOError
	require.True(t, errors.As(CommitAll(writers...), &ioErr))
	assert.Equal(t, "rename", ioErr.Op)

	content, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "previous\n", string(content))

	leftovers, err := filepath.Glob(filepath.Join(dir, ".*.tmp*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)

	writer, err := CreateAtomic(first)
	require.NoError(t, err)
	_, err = writer.WriteString("new\n")
	require.NoError(t, err)

	require.NoError(t, CommitAll(writer))
	content, err = os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(content))
}

func TestFilenameFlag(t *testing.T) {
	var fname Filename
	assert.Error(t, fname.Set(filepath.Join(t.TempDir(), "missing")))

	existing := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(existing, []byte("a\n"), 0644))
	require.NoError(t, fname.Set(existing))
	assert.Equal(t, existing, fname.String())

	var flags ArrayFlags
	require.NoError(t, flags.Set("a"))
	require.NoError(t, flags.Set("b"))
	assert.Equal(t, "a\tb", flags.String())
}

func TestErrorMessages(t *testing.T) {
	err := &CountMismatchError{File: "genes.tsv", What: "rows", Expected: 58302, Actual: 58301}
	assert.Contains(t, err.Error(), "58302")
	assert.Contains(t, err.Error(), "58301")
	assert.Contains(t, err.Error(), "genes.tsv")

	labelErr := &UnrecognizedLabelError{Label: "foo", Known: []string{"a", "b"}}
	assert.Contains(t, labelErr.Error(), "a, b")
}
