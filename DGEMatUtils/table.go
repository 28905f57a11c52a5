package dgematutils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	utils "gitlab.com/Grouumf/DGEvignettes/DGEUtils"
)

/*tableReader delimited table with a header row, read record by record */
type tableReader struct {
	fname   string
	reader  *csv.Reader
	closer  io.Closer
	columns map[string]int
	need    int
}

func openTable(fname, sep string) (*tableReader, error) {
	comma, size := utf8.DecodeRuneInString(sep)

	if size == 0 || size != len(sep) {
		return nil, fmt.Errorf("table %s: delimiter %q must be a single character", fname, sep)
	}

	reader, err := utils.OpenReader(fname)

	if err != nil {
		return nil, err
	}

	table := &tableReader{
		fname:   fname,
		reader:  csv.NewReader(reader),
		closer:  reader,
		columns: make(map[string]int),
	}

	table.reader.Comma = comma
	table.reader.Comment = '#'
	table.reader.LazyQuotes = true
	table.reader.FieldsPerRecord = -1

	header, err := table.reader.Read()

	if err != nil {
		table.Close()

		if err == io.EOF {
			return nil, &utils.FormatError{File: fname, Reason: "empty table, header row missing"}
		}

		return nil, table.wrap(err)
	}

	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))

		if _, isInside := table.columns[name]; !isInside {
			table.columns[name] = i
		}
	}

	return table, nil
}

/*column position of name in the header, -1 when absent and optional */
func (t *tableReader) column(name string, required bool) (int, error) {
	pos, isInside := t.columns[name]

	switch {
	case isInside:
		if pos+1 > t.need {
			t.need = pos + 1
		}

		return pos, nil
	case required:
		return -1, &utils.FormatError{File: t.fname, Line: 1,
			Reason: fmt.Sprintf("required column %q missing from header", name)}
	}

	return -1, nil
}

/*next record and its line number. io.EOF at the end of the table */
func (t *tableReader) next() ([]string, int, error) {
	record, err := t.reader.Read()

	if err != nil {
		if err == io.EOF {
			return nil, 0, err
		}

		return nil, 0, t.wrap(err)
	}

	line, _ := t.reader.FieldPos(0)

	if len(record) < t.need {
		return nil, line, &utils.FormatError{File: t.fname, Line: line,
			Text:   strings.Join(record, string(t.reader.Comma)),
			Reason: fmt.Sprintf("expected at least %d fields, found %d", t.need, len(record))}
	}

	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}

	return record, line, nil
}

func (t *tableReader) wrap(err error) error {
	var parseErr *csv.ParseError

	if errors.As(err, &parseErr) {
		return &utils.FormatError{File: t.fname, Line: parseErr.Line, Reason: parseErr.Err.Error()}
	}

	return &utils.IOError{Op: "read", Path: t.fname, Err: err}
}

func (t *tableReader) Close() {
	utils.CloseFile(t.closer)
}
