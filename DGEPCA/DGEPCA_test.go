package dgepca

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dgematutils "gitlab.com/Grouumf/DGEvignettes/DGEMatUtils"
)

// value of gene i in well j is geneFactor[i] * wellFactor[j]
func rankOne(geneFactor, wellFactor []float64) *dgematutils.DenseMatrix {
	var genes, wells []string

	for i := range geneFactor {
		genes = append(genes, "g"+string(rune('a'+i)))
	}

	for j := range wellFactor {
		wells = append(wells, "W"+string(rune('a'+j)))
	}

	matrix := dgematutils.NewDenseMatrix(genes, wells)

	for i, a := range geneFactor {
		for j, b := range wellFactor {
			matrix.Values[i*len(wellFactor)+j] = a * b
		}
	}

	return matrix
}

func TestRankOneFirstComponent(t *testing.T) {
	matrix := rankOne([]float64{1, 2, 0.5, 3}, []float64{1, 2, 3, 4, 6})
	logger, _ := test.NewNullLogger()

	result, err := Run(matrix, Options{}, logger)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, result.Fractions[0], 1e-9)
	assert.Equal(t, matrix.ColLabels, result.Samples)
	assert.Len(t, result.Features, 4)

	rows, cols := result.Scores.Dims()
	assert.Equal(t, 5, rows)
	assert.Equal(t, len(result.Variances), cols)
}

func TestConstantGenesDropped(t *testing.T) {
	matrix := &dgematutils.DenseMatrix{
		RowLabels: []string{"flat", "g1", "g2"},
		ColLabels: []string{"W1", "W2", "W3"},
		Values: []float64{
			7, 7, 7,
			1, 5, 9,
			2, 0, 4,
		},
	}
	logger, _ := test.NewNullLogger()

	result, err := Run(matrix, Options{Log: true, Scale: true, Components: 1}, logger)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Dropped)
	assert.Equal(t, []string{"g1", "g2"}, result.Features)
	assert.Len(t, result.Variances, 1)
	assert.Equal(t, []string{"PC1"}, result.ComponentNames())

	_, cols := result.Scores.Dims()
	assert.Equal(t, 1, cols)
}

func TestRunErrors(t *testing.T) {
	logger, _ := test.NewNullLogger()

	_, err := Run(rankOne([]float64{1, 2}, []float64{3}), Options{}, logger)
	assert.Error(t, err)

	flat := dgematutils.NewDenseMatrix([]string{"g1"}, []string{"W1", "W2"})
	_, err = Run(flat, Options{}, logger)
	assert.Error(t, err)
}

func TestWriteResults(t *testing.T) {
	matrix := rankOne([]float64{1, 2, 3}, []float64{1, 2, 4})
	logger, _ := test.NewNullLogger()

	result, err := Run(matrix, Options{Components: 2}, logger)
	require.NoError(t, err)

	dir := t.TempDir()
	scores := filepath.Join(dir, "scores.tsv")
	require.NoError(t, WriteScores(scores, result))

	back, err := dgematutils.ReadDense(scores, "\t")
	require.NoError(t, err)
	assert.Equal(t, matrix.ColLabels, back.RowLabels)
	assert.Equal(t, []string{"PC1", "PC2"}, back.ColLabels)

	variance := filepath.Join(dir, "variance.tsv")
	require.NoError(t, WriteVariance(variance, result))

	content, err := os.ReadFile(variance)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "component\tvariance\tfraction", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "PC1\t"))
}

func TestSummarize(t *testing.T) {
	matrix := &dgematutils.DenseMatrix{
		RowLabels: []string{"g1", "g2"},
		ColLabels: []string{"W1", "W2"},
		Values:    []float64{5, 0, 0, 7},
	}

	summary := Summarize(matrix)

	assert.Equal(t, []float64{5, 7}, summary.LibrarySize)
	assert.Equal(t, []float64{1, 1}, summary.Detected)
	assert.Equal(t, 6.0, summary.LibrarySizeDist.Mean)
	assert.InDelta(t, 1.41421356, summary.LibrarySizeDist.StdDev, 1e-6)
	assert.Equal(t, 5.0, summary.LibrarySizeDist.Min)
	assert.Equal(t, 7.0, summary.LibrarySizeDist.Max)
	assert.Equal(t, 0.0, summary.DetectedDist.StdDev)

	var buffer bytes.Buffer
	summary.Print(&buffer)
	assert.Contains(t, buffer.String(), "library size: mean 6.00")
}
