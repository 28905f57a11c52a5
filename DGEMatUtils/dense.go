/* Long (display ID, label, value) to wide (display ID x label) reconstruction */

package dgematutils

/*Triple one surviving count after both identifier joins */
type Triple struct {
	DisplayID string
	Label     string
	Value     float64
}

/*DenseMatrix display ID x column label matrix. Values are stored row-major:
Values[i*len(ColLabels)+j] */
type DenseMatrix struct {
	RowLabels []string
	ColLabels []string
	Values    []float64
}

/*NewDenseMatrix zero-filled matrix */
func NewDenseMatrix(rowLabels, colLabels []string) *DenseMatrix {
	return &DenseMatrix{
		RowLabels: rowLabels,
		ColLabels: colLabels,
		Values:    make([]float64, len(rowLabels)*len(colLabels)),
	}
}

/*Dims number of rows (genes) and columns (wells) */
func (m *DenseMatrix) Dims() (int, int) {
	return len(m.RowLabels), len(m.ColLabels)
}

/*At value at row i, column j (0-based) */
func (m *DenseMatrix) At(i, j int) float64 {
	return m.Values[i*len(m.ColLabels)+j]
}

/*Row values of row i, sharing the matrix storage */
func (m *DenseMatrix) Row(i int) []float64 {
	nbCols := len(m.ColLabels)
	return m.Values[i*nbCols : (i+1)*nbCols]
}

/*Get value of (displayID, label). ok is false when either label is absent */
func (m *DenseMatrix) Get(displayID, label string) (value float64, ok bool) {
	i, j := indexOf(m.RowLabels, displayID), indexOf(m.ColLabels, label)

	if i < 0 || j < 0 {
		return 0, false
	}

	return m.At(i, j), true
}

func indexOf(labels []string, value string) int {
	for i := range labels {
		if labels[i] == value {
			return i
		}
	}

	return -1
}

// intermediate record between the row join and the column join
type rowTriple struct {
	displayID string
	col       int
	value     float64
}

/*JoinTriples inner join of the sparse entries with the resolved rows, then
with the resolved columns, projected to (display ID, label, value). Entries
whose row or column did not resolve are dropped */
func JoinTriples(sparse *SparseMatrix, rows ResolvedRows, cols ResolvedCols) []Triple {
	withRows := Join(sparse.Entries, rows,
		func(e SparseEntry) int { return e.Row },
		func(r ResolvedRow) int { return r.Index },
		Inner,
		func(e *SparseEntry, r *ResolvedRow) rowTriple {
			return rowTriple{displayID: r.DisplayID, col: e.Col, value: e.Value}
		})

	return Join(withRows, cols,
		func(t rowTriple) int { return t.col },
		func(c ResolvedCol) int { return c.Index },
		Inner,
		func(t *rowTriple, c *ResolvedCol) Triple {
			return Triple{DisplayID: t.displayID, Label: c.Label, Value: t.value}
		})
}

/*Pivot long to wide: one row per distinct display ID, one column per
distinct label, both sorted. Values of repeated (display ID, label) pairs are
summed and absent pairs are 0 */
func Pivot(triples []Triple) *DenseMatrix {
	var rowSet, colSet labelSet

	for _, triple := range triples {
		rowSet.add(triple.DisplayID)
		colSet.add(triple.Label)
	}

	rowLabels, rowPos := rowSet.positions()
	colLabels, colPos := colSet.positions()

	matrix := NewDenseMatrix(rowLabels, colLabels)
	nbCols := len(colLabels)

	for _, triple := range triples {
		matrix.Values[rowPos[triple.DisplayID]*nbCols+colPos[triple.Label]] += triple.Value
	}

	return matrix
}

/*Reconstruct join, project and pivot the sparse matrix into its dense form */
func Reconstruct(sparse *SparseMatrix, rows ResolvedRows, cols ResolvedCols) *DenseMatrix {
	return Pivot(JoinTriples(sparse, rows, cols))
}
