/* Row (gene) identifiers: positional index file and gene ID -> gene name table */

package dgematutils

import (
	"io"
	"strconv"

	log "github.com/sirupsen/logrus"
	utils "gitlab.com/Grouumf/DGEvignettes/DGEUtils"
)

/*RowID primary identifier of the row at 1-based position Index */
type RowID struct {
	Index     int
	PrimaryID string
}

/*IdentifierEntry one line of the gene ID -> gene name table. Coordinates are
only filled when the table carries them */
type IdentifierEntry struct {
	PrimaryID string
	DisplayID string
	Chr       string
	Start     int
	End       int
	HasCoords bool
	Line      int
}

/*MapOptions column names of the gene ID -> gene name table */
type MapOptions struct {
	Delimiter     string `yaml:"delimiter"`
	PrimaryColumn string `yaml:"primaryColumn"`
	DisplayColumn string `yaml:"displayColumn"`
	ChrColumn     string `yaml:"chrColumn"`
	StartColumn   string `yaml:"startColumn"`
	EndColumn     string `yaml:"endColumn"`
}

/*DefaultMapOptions column names of a biomaRt export */
func DefaultMapOptions() MapOptions {
	return MapOptions{
		Delimiter:     "\t",
		PrimaryColumn: "ensembl_gene_id",
		DisplayColumn: "external_gene_name",
		ChrColumn:     "chromosome_name",
		StartColumn:   "start_position",
		EndColumn:     "end_position",
	}
}

/*ResolvedRow display identifier of the row at 1-based position Index */
type ResolvedRow struct {
	Index     int
	DisplayID string
}

/*ResolvedRows resolved rows in row index order */
type ResolvedRows []ResolvedRow

/*Lookup row index -> display identifier */
func (r ResolvedRows) Lookup() map[int]string {
	lookup := make(map[int]string, len(r))

	for _, row := range r {
		lookup[row.Index] = row.DisplayID
	}

	return lookup
}

/*LoadRowIndex load the ordered primary identifiers of the matrix rows. The
number of identifiers must equal the declared number of rows */
func LoadRowIndex(fname string, declaredRows int) ([]RowID, error) {
	ids, err := utils.LoadIndexFile(fname)

	if err != nil {
		return nil, err
	}

	if len(ids) != declaredRows {
		return nil, &utils.CountMismatchError{File: fname, What: "row identifiers",
			Expected: declaredRows, Actual: len(ids)}
	}

	rows := make([]RowID, len(ids))

	for i, id := range ids {
		rows[i] = RowID{Index: i + 1, PrimaryID: id}
	}

	return rows, nil
}

/*LoadIdentifierMap load the gene ID -> gene name table, in file order */
func LoadIdentifierMap(fname string, opts MapOptions) ([]IdentifierEntry, error) {
	table, err := openTable(fname, opts.Delimiter)

	if err != nil {
		return nil, err
	}

	defer table.Close()

	primaryPos, err := table.column(opts.PrimaryColumn, true)
	if err != nil {
		return nil, err
	}

	displayPos, err := table.column(opts.DisplayColumn, true)
	if err != nil {
		return nil, err
	}

	var coordPos [3]int
	hasCoords := true

	for i, name := range []string{opts.ChrColumn, opts.StartColumn, opts.EndColumn} {
		coordPos[i] = -1

		if name != "" {
			coordPos[i], _ = table.column(name, false)
		}

		if coordPos[i] < 0 {
			hasCoords = false
		}
	}

	var entries []IdentifierEntry

	for {
		record, line, err := table.next()

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, err
		}

		entry := IdentifierEntry{
			PrimaryID: record[primaryPos],
			DisplayID: record[displayPos],
			Line:      line,
		}

		if hasCoords {
			entry.setCoords(record[coordPos[0]], record[coordPos[1]], record[coordPos[2]])
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// genes without (or with unparsable) coordinates simply stay without HasCoords
func (e *IdentifierEntry) setCoords(chr, start, end string) {
	var err1, err2 error

	if chr == "" {
		return
	}

	e.Start, err1 = strconv.Atoi(start)
	e.End, err2 = strconv.Atoi(end)

	if err1 != nil || err2 != nil || e.End < e.Start {
		e.Start, e.End = 0, 0
		return
	}

	e.Chr = utils.NormalizeChr(chr)
	e.HasCoords = true
}

/*DedupDisplay keep, in table order, the entries whose display identifier and
primary identifier were both not seen yet. A dropped entry claims neither
identifier, so (p1,d1),(p1,d2),(p2,d2) keeps (p1,d1) and (p2,d2). Entries with
an empty display identifier are dropped */
func DedupDisplay(entries []IdentifierEntry) []IdentifierEntry {
	seenDisplay := make(map[string]bool, len(entries))
	seenPrimary := make(map[string]bool, len(entries))
	kept := make([]IdentifierEntry, 0, len(entries))

	for _, entry := range entries {
		if entry.DisplayID == "" || seenDisplay[entry.DisplayID] || seenPrimary[entry.PrimaryID] {
			continue
		}

		seenDisplay[entry.DisplayID] = true
		seenPrimary[entry.PrimaryID] = true
		kept = append(kept, entry)
	}

	return kept
}

/*FilterByRegions keep the entries whose gene overlaps one of the regions.
Entries without coordinates are dropped */
func FilterByRegions(entries []IdentifierEntry, regions *utils.RegionIndex) []IdentifierEntry {
	kept := make([]IdentifierEntry, 0, len(entries))

	for _, entry := range entries {
		if entry.HasCoords && regions.Overlaps(entry.Chr, entry.Start, entry.End) {
			kept = append(kept, entry)
		}
	}

	return kept
}

/*ResolveRows inner join of the row index with the identifier table on the
primary identifier. Rows without a mapping are dropped */
func ResolveRows(index []RowID, mapping []IdentifierEntry, logger log.FieldLogger) ResolvedRows {
	if logger == nil {
		logger = log.StandardLogger()
	}

	resolved := Join(index, mapping,
		func(r RowID) string { return r.PrimaryID },
		func(e IdentifierEntry) string { return e.PrimaryID },
		Inner,
		func(r *RowID, e *IdentifierEntry) ResolvedRow {
			return ResolvedRow{Index: r.Index, DisplayID: e.DisplayID}
		})

	logger.Infof("%d / %d rows resolved to a display identifier", len(resolved), len(index))

	return resolved
}
