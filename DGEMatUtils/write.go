package dgematutils

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	utils "gitlab.com/Grouumf/DGEvignettes/DGEUtils"
)

/*WriteOptions layout of the serialized dense matrix. Precision -1 writes the
shortest exact representation (integers without decimal point) */
type WriteOptions struct {
	Delimiter string `yaml:"delimiter"`
	RowHeader string `yaml:"rowHeader"`
	Precision int    `yaml:"precision"`
}

/*DefaultWriteOptions tab-delimited, "gene" row header */
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{Delimiter: "\t", RowHeader: "gene", Precision: -1}
}

func (opts WriteOptions) check(m *DenseMatrix) error {
	if opts.Delimiter == "" {
		return fmt.Errorf("empty output delimiter")
	}

	for _, labels := range [][]string{{opts.RowHeader}, m.RowLabels, m.ColLabels} {
		for _, name := range labels {
			if strings.Contains(name, opts.Delimiter) || strings.ContainsAny(name, "\r\n") {
				return fmt.Errorf("label %q contains the output delimiter or a newline", name)
			}
		}
	}

	return nil
}

/*WriteDense write the header row (row header then column labels) and one
line per display ID */
func WriteDense(w io.Writer, m *DenseMatrix, opts WriteOptions) error {
	if err := opts.check(m); err != nil {
		return err
	}

	writer := bufio.NewWriter(w)
	buffer := make([]byte, 0, 64)

	writer.WriteString(opts.RowHeader)

	for _, label := range m.ColLabels {
		writer.WriteString(opts.Delimiter)
		writer.WriteString(label)
	}

	writer.WriteByte('\n')

	for i, displayID := range m.RowLabels {
		writer.WriteString(displayID)

		for _, value := range m.Row(i) {
			writer.WriteString(opts.Delimiter)
			buffer = formatValue(buffer[:0], value, opts.Precision)
			writer.Write(buffer)
		}

		if err := writer.WriteByte('\n'); err != nil {
			return err
		}
	}

	return writer.Flush()
}

func formatValue(buffer []byte, value float64, precision int) []byte {
	if precision < 0 && value == math.Trunc(value) && math.Abs(value) < 1e15 {
		return strconv.AppendInt(buffer, int64(value), 10)
	}

	return strconv.AppendFloat(buffer, value, 'f', precision, 64)
}

/*WriteDenseFile write the matrix to fname. The file only appears (or is
replaced) once completely written */
func WriteDenseFile(fname string, m *DenseMatrix, opts WriteOptions) error {
	writer, err := utils.CreateAtomic(fname)

	if err != nil {
		return err
	}

	defer writer.Abort()

	if err = WriteDense(writer, m, opts); err != nil {
		return err
	}

	return writer.Commit()
}

/*ReadDense read back a matrix written by WriteDense. An empty sep splits on
any whitespace run */
func ReadDense(fname, sep string) (*DenseMatrix, error) {
	split := func(line string) []string {
		if sep == "" {
			return utils.SplitFields(line, sep)
		}

		return strings.Split(line, sep)
	}

	scanner, closer, err := utils.ReturnReader(fname)

	if err != nil {
		return nil, err
	}

	defer utils.CloseFile(closer)

	if !scanner.Scan() {
		if err = scanner.Err(); err != nil {
			return nil, &utils.IOError{Op: "read", Path: fname, Err: err}
		}

		return nil, &utils.FormatError{File: fname, Reason: "empty matrix file"}
	}

	header := split(strings.TrimRight(scanner.Text(), "\r"))

	if len(header) == 0 {
		return nil, &utils.FormatError{File: fname, Line: 1, Reason: "empty header line"}
	}

	matrix := &DenseMatrix{ColLabels: header[1:]}
	lineNb := 1

	for scanner.Scan() {
		lineNb++
		line := strings.TrimRight(scanner.Text(), "\r")

		if line == "" {
			continue
		}

		fields := split(line)

		if len(fields) != len(header) {
			return nil, &utils.FormatError{File: fname, Line: lineNb, Text: line,
				Reason: fmt.Sprintf("expected %d fields, found %d", len(header), len(fields))}
		}

		matrix.RowLabels = append(matrix.RowLabels, fields[0])

		for _, field := range fields[1:] {
			value, err := strconv.ParseFloat(field, 64)

			if err != nil {
				return nil, &utils.FormatError{File: fname, Line: lineNb, Text: line,
					Reason: fmt.Sprintf("value %q is not numeric", field)}
			}

			matrix.Values = append(matrix.Values, value)
		}
	}

	if err = scanner.Err(); err != nil {
		return nil, &utils.IOError{Op: "read", Path: fname, Err: err}
	}

	return matrix, nil
}
