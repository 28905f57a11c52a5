/* Loading of sparse (row, column, value) count matrices in MatrixMarket-like coordinate format */

package dgematutils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	utils "gitlab.com/Grouumf/DGEvignettes/DGEUtils"
)

/*SparseEntry one (row, column, value) triplet. Indexes are 1-based */
type SparseEntry struct {
	Row   int
	Col   int
	Value float64
}

/*SparseMatrix triplets plus the statistics declared in the header line */
type SparseMatrix struct {
	File     string
	Rows     int
	Cols     int
	Declared int
	Entries  []SparseEntry
}

/*TripletOptions parsing options of the sparse matrix file.
An empty Delimiter splits on whitespace runs. When Strict is false, a
declared/parsed entry count disagreement is only logged */
type TripletOptions struct {
	Delimiter string `yaml:"delimiter"`
	Comment   string `yaml:"comment"`
	Strict    bool   `yaml:"strict"`
}

/*DefaultTripletOptions MatrixMarket defaults */
func DefaultTripletOptions() TripletOptions {
	return TripletOptions{Comment: "%", Strict: true}
}

/*LoadSparseTriplets load the sparse matrix fname. Comment lines are skipped
wherever they occur, the first remaining line is the header
(rows, cols, entries) and every other line is one triplet */
func LoadSparseTriplets(fname string, opts TripletOptions, logger log.FieldLogger) (*SparseMatrix, error) {
	if logger == nil {
		logger = log.StandardLogger()
	}

	scanner, closer, err := utils.ReturnReader(fname)

	if err != nil {
		return nil, err
	}

	defer utils.CloseFile(closer)

	tStart := time.Now()
	matrix := &SparseMatrix{File: fname}

	var line string
	var split []string
	var lineNb int
	var isHeader = true

	for scanner.Scan() {
		lineNb++
		line = strings.TrimRight(scanner.Text(), "\r")

		if strings.TrimSpace(line) == "" {
			continue
		}

		if opts.Comment != "" && strings.HasPrefix(line, opts.Comment) {
			continue
		}

		split = utils.SplitFields(line, opts.Delimiter)

		if len(split) != 3 {
			return nil, &utils.FormatError{File: fname, Line: lineNb, Text: line,
				Reason: fmt.Sprintf("expected 3 fields, found %d", len(split))}
		}

		if isHeader {
			if err = matrix.parseHeader(split); err != nil {
				return nil, &utils.FormatError{File: fname, Line: lineNb, Text: line,
					Reason: err.Error()}
			}

			isHeader = false
			continue
		}

		entry, err := matrix.parseEntry(split)

		if err != nil {
			return nil, &utils.FormatError{File: fname, Line: lineNb, Text: line,
				Reason: err.Error()}
		}

		matrix.Entries = append(matrix.Entries, entry)
	}

	if err = scanner.Err(); err != nil {
		return nil, &utils.IOError{Op: "read", Path: fname, Err: err}
	}

	if isHeader {
		return nil, &utils.FormatError{File: fname, Reason: "no header line (rows cols entries) found"}
	}

	if len(matrix.Entries) != matrix.Declared {
		sizeErr := &utils.SizeMismatchError{File: fname,
			Expected: matrix.Declared, Actual: len(matrix.Entries)}

		if opts.Strict {
			return nil, sizeErr
		}

		logger.Warn(sizeErr.Error())
	}

	logger.WithFields(log.Fields{
		"rows":    matrix.Rows,
		"cols":    matrix.Cols,
		"entries": len(matrix.Entries),
	}).Infof("sparse matrix %s loaded", fname)
	utils.TimeIt(logger, "Loading sparse matrix", tStart)

	return matrix, nil
}

func (m *SparseMatrix) parseHeader(split []string) error {
	var stats [3]int

	for i, field := range split {
		value, err := strconv.Atoi(field)

		if err != nil || value < 0 {
			return fmt.Errorf("header field %q is not a non-negative integer", field)
		}

		stats[i] = value
	}

	m.Rows, m.Cols, m.Declared = stats[0], stats[1], stats[2]

	// the header count is a hint only, do not trust it for huge allocations
	capacity := m.Declared

	if capacity > 1<<24 {
		capacity = 1 << 24
	}

	m.Entries = make([]SparseEntry, 0, capacity)

	return nil
}

func (m *SparseMatrix) parseEntry(split []string) (entry SparseEntry, err error) {
	if entry.Row, err = strconv.Atoi(split[0]); err != nil {
		return entry, fmt.Errorf("row index %q is not an integer", split[0])
	}

	if entry.Col, err = strconv.Atoi(split[1]); err != nil {
		return entry, fmt.Errorf("column index %q is not an integer", split[1])
	}

	if entry.Value, err = strconv.ParseFloat(split[2], 64); err != nil {
		return entry, fmt.Errorf("value %q is not numeric", split[2])
	}

	switch {
	case math.IsNaN(entry.Value) || math.IsInf(entry.Value, 0) || entry.Value < 0:
		return entry, fmt.Errorf("value %q is not a finite non-negative count", split[2])
	case entry.Row < 1 || entry.Row > m.Rows:
		return entry, fmt.Errorf("row index %d outside 1..%d", entry.Row, m.Rows)
	case entry.Col < 1 || entry.Col > m.Cols:
		return entry, fmt.Errorf("column index %d outside 1..%d", entry.Col, m.Cols)
	}

	return entry, nil
}
