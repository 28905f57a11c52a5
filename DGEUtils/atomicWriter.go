package dgeutils

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
)

/*AtomicWriter writes into a temporary file next to the destination and only
renames it over the destination on Commit. Until then the destination is left
untouched. The compression layer is chosen from the destination extension. */
type AtomicWriter struct {
	fname  string
	tmp    *os.File
	layer  io.WriteCloser
	buffer *bufio.Writer
	sealed bool
	done   bool
	err    error
}

/*CreateAtomic open a temporary file for fname, compressed when the extension
asks for it */
func CreateAtomic(fname string) (*AtomicWriter, error) {
	return createAtomic(fname, true)
}

/*CreateAtomicRaw same as CreateAtomic, but the bytes are written as they are
whatever the extension (already compressed downloads) */
func CreateAtomicRaw(fname string) (*AtomicWriter, error) {
	return createAtomic(fname, false)
}

func createAtomic(fname string, compress bool) (*AtomicWriter, error) {
	dir := filepath.Dir(fname)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fname)+".tmp*")

	if err != nil {
		return nil, &IOError{Op: "create", Path: fname, Err: err}
	}

	var layer io.WriteCloser = tmp

	if compress {
		layer, err = wrapCompression(fname, tmp)
	}

	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, err
	}

	return &AtomicWriter{
		fname:  fname,
		tmp:    tmp,
		layer:  layer,
		buffer: bufio.NewWriterSize(layer, 1<<20),
	}, nil
}

/*Write ... */
func (a *AtomicWriter) Write(p []byte) (int, error) {
	return a.buffer.Write(p)
}

/*WriteString ... */
func (a *AtomicWriter) WriteString(s string) (int, error) {
	return a.buffer.WriteString(s)
}

/*Name destination file name */
func (a *AtomicWriter) Name() string {
	return a.fname
}

/*Seal flush and close the temporary file without moving it. A sealed writer
only has its rename left */
func (a *AtomicWriter) Seal() error {
	if a.sealed || a.done {
		return a.err
	}

	if err := a.buffer.Flush(); err != nil {
		return a.fail(&IOError{Op: "write", Path: a.fname, Err: err})
	}

	// closing the layer closes the temporary file too
	if err := a.layer.Close(); err != nil {
		return a.fail(&IOError{Op: "write", Path: a.fname, Err: err})
	}

	if err := os.Chmod(a.tmp.Name(), 0644); err != nil {
		return a.fail(&IOError{Op: "chmod", Path: a.fname, Err: err})
	}

	a.sealed = true

	return nil
}

/*Commit flush everything and move the temporary file to its destination */
func (a *AtomicWriter) Commit() error {
	if a.done {
		return a.err
	}

	if err := a.Seal(); err != nil {
		return err
	}

	a.done = true

	if err := os.Rename(a.tmp.Name(), a.fname); err != nil {
		return a.fail(&IOError{Op: "rename", Path: a.fname, Err: err})
	}

	return nil
}

/*Abort drop the temporary file. Calling Abort after Commit is a no-op, which
makes `defer w.Abort()` safe */
func (a *AtomicWriter) Abort() {
	if a.done {
		return
	}

	a.done = true
	a.discard()
}

func (a *AtomicWriter) fail(err error) error {
	a.done = true
	a.err = err
	a.discard()

	return err
}

func (a *AtomicWriter) discard() {
	if !a.sealed {
		a.layer.Close()
	}

	a.tmp.Close()
	os.Remove(a.tmp.Name())
}

/*CommitAll seal every writer, then move them all to their destinations. When
one of them cannot be sealed, every writer is aborted and no destination is
touched */
func CommitAll(writers ...*AtomicWriter) error {
	for _, writer := range writers {
		if err := writer.Seal(); err != nil {
			AbortAll(writers...)
			return err
		}
	}

	for i, writer := range writers {
		if err := writer.Commit(); err != nil {
			AbortAll(writers[i+1:]...)
			return err
		}
	}

	return nil
}

/*AbortAll abort every writer not yet committed */
func AbortAll(writers ...*AtomicWriter) {
	for _, writer := range writers {
		writer.Abort()
	}
}
