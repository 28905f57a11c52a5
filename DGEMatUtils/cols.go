/* Column (well) identifiers: positional barcode file and barcode -> well label table */

package dgematutils

import (
	"io"

	log "github.com/sirupsen/logrus"
	utils "gitlab.com/Grouumf/DGEvignettes/DGEUtils"
)

/*ColID barcode of the column at 1-based position Index */
type ColID struct {
	Index   int
	Barcode string
}

/*BarcodeEntry one line of the barcode table */
type BarcodeEntry struct {
	Set     string
	Label   string
	Barcode string
	Line    int
}

/*BarcodeOptions column names of the barcode table. A non-empty Set keeps
only the rows of that set */
type BarcodeOptions struct {
	Delimiter     string `yaml:"delimiter"`
	SetColumn     string `yaml:"setColumn"`
	LabelColumn   string `yaml:"labelColumn"`
	BarcodeColumn string `yaml:"barcodeColumn"`
	Set           string `yaml:"set"`
}

/*DefaultBarcodeOptions tab-delimited table with set, well and barcode columns,
no set filter */
func DefaultBarcodeOptions() BarcodeOptions {
	return BarcodeOptions{
		Delimiter:     "\t",
		SetColumn:     "set",
		LabelColumn:   "well",
		BarcodeColumn: "barcode",
	}
}

/*ResolvedCol label of the column at 1-based position Index */
type ResolvedCol struct {
	Index int
	Label string
}

/*ResolvedCols resolved columns in column index order */
type ResolvedCols []ResolvedCol

/*Lookup column index -> label */
func (c ResolvedCols) Lookup() map[int]string {
	lookup := make(map[int]string, len(c))

	for _, col := range c {
		lookup[col.Index] = col.Label
	}

	return lookup
}

/*LoadColIndex load the ordered barcodes of the matrix columns. The number
of barcodes must equal the declared number of columns */
func LoadColIndex(fname string, declaredCols int) ([]ColID, error) {
	barcodes, err := utils.LoadIndexFile(fname)

	if err != nil {
		return nil, err
	}

	if len(barcodes) != declaredCols {
		return nil, &utils.CountMismatchError{File: fname, What: "column barcodes",
			Expected: declaredCols, Actual: len(barcodes)}
	}

	cols := make([]ColID, len(barcodes))

	for i, barcode := range barcodes {
		cols[i] = ColID{Index: i + 1, Barcode: barcode}
	}

	return cols, nil
}

/*LoadBarcodeMap load the barcode -> label table. A barcode listed twice with
the same label is kept once; with two different labels it is an error */
func LoadBarcodeMap(fname string, opts BarcodeOptions) ([]BarcodeEntry, error) {
	table, err := openTable(fname, opts.Delimiter)

	if err != nil {
		return nil, err
	}

	defer table.Close()

	setPos := -1

	if opts.SetColumn != "" || opts.Set != "" {
		if setPos, err = table.column(opts.SetColumn, opts.Set != ""); err != nil {
			return nil, err
		}
	}

	labelPos, err := table.column(opts.LabelColumn, true)
	if err != nil {
		return nil, err
	}

	barcodePos, err := table.column(opts.BarcodeColumn, true)
	if err != nil {
		return nil, err
	}

	var entries []BarcodeEntry
	seen := make(map[string]int)

	for {
		record, line, err := table.next()

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, err
		}

		entry := BarcodeEntry{
			Label:   record[labelPos],
			Barcode: record[barcodePos],
			Line:    line,
		}

		if setPos >= 0 {
			entry.Set = record[setPos]
		}

		if opts.Set != "" && entry.Set != opts.Set {
			continue
		}

		if pos, isInside := seen[entry.Barcode]; isInside {
			if entries[pos].Label != entry.Label {
				return nil, &utils.DuplicateKeyError{File: fname, Line: line,
					Key: entry.Barcode, First: entries[pos].Label, Second: entry.Label}
			}

			continue
		}

		seen[entry.Barcode] = len(entries)
		entries = append(entries, entry)
	}

	return entries, nil
}

/*ResolveCols inner join of the column index with the barcode table on the
barcode. Columns without a label are dropped */
func ResolveCols(index []ColID, barcodes []BarcodeEntry, logger log.FieldLogger) ResolvedCols {
	if logger == nil {
		logger = log.StandardLogger()
	}

	resolved := Join(index, barcodes,
		func(c ColID) string { return c.Barcode },
		func(b BarcodeEntry) string { return b.Barcode },
		Inner,
		func(c *ColID, b *BarcodeEntry) ResolvedCol {
			return ResolvedCol{Index: c.Index, Label: b.Label}
		})

	logger.Infof("%d / %d columns resolved to a label", len(resolved), len(index))

	return resolved
}
