package dgeutils

import (
	"fmt"
	"strings"
)

/*FormatError a malformed line or field in one of the input files */
type FormatError struct {
	File   string
	Line   int
	Text   string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("format error in %s at line %d: %s (%q)",
			e.File, e.Line, e.Reason, e.Text)
	}

	return fmt.Sprintf("format error in %s: %s", e.File, e.Reason)
}

/*CountMismatchError the number of loaded identifiers differs from the
declared dimension of the sparse matrix */
type CountMismatchError struct {
	File     string
	What     string
	Expected int
	Actual   int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("count mismatch in %s: expected %d %s (sparse matrix header) but found %d",
		e.File, e.Expected, e.What, e.Actual)
}

/*SizeMismatchError the number of parsed entries differs from the entry count
declared in the sparse matrix header */
type SizeMismatchError struct {
	File     string
	Expected int
	Actual   int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("size mismatch in %s: header declares %d entries but %d were parsed",
		e.File, e.Expected, e.Actual)
}

/*UnrecognizedLabelError unknown dataset label */
type UnrecognizedLabelError struct {
	Label string
	Known []string
}

func (e *UnrecognizedLabelError) Error() string {
	return fmt.Sprintf("unrecognized dataset label %q (known labels: %s)",
		e.Label, strings.Join(e.Known, ", "))
}

/*IOError file not found, unreadable or unwritable */
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("cannot %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

/*DuplicateKeyError a lookup table key mapped to two different values */
type DuplicateKeyError struct {
	File   string
	Line   int
	Key    string
	First  string
	Second string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %q in %s at line %d: maps to both %q and %q",
		e.Key, e.File, e.Line, e.First, e.Second)
}
