package dgematutils

import (
	"io"

	"github.com/aclements/go-gg/table"
)

/*Preview print the top-left nbRows x nbCols corner of the matrix as an
aligned text table */
func Preview(w io.Writer, m *DenseMatrix, rowHeader string, nbRows, nbCols int) {
	rows, cols := m.Dims()

	if nbRows > rows || nbRows < 0 {
		nbRows = rows
	}

	if nbCols > cols || nbCols < 0 {
		nbCols = cols
	}

	builder := new(table.Builder).Add(rowHeader, m.RowLabels[:nbRows])

	for j := 0; j < nbCols; j++ {
		column := make([]float64, nbRows)

		for i := range column {
			column[i] = m.At(i, j)
		}

		builder.Add(m.ColLabels[j], column)
	}

	table.Fprint(w, builder.Done())
}
