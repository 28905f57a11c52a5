package dgepca

import (
	"fmt"
	"io"
	"strconv"

	"github.com/aclements/go-moremath/stats"
	dgematutils "gitlab.com/Grouumf/DGEvignettes/DGEMatUtils"
	utils "gitlab.com/Grouumf/DGEvignettes/DGEUtils"
)

/*WriteScores sample x component score table, tab-delimited */
func WriteScores(fname string, r *Result) error {
	opts := dgematutils.DefaultWriteOptions()
	opts.RowHeader = "sample"

	return dgematutils.WriteDenseFile(fname, r.ScoreMatrix(), opts)
}

/*WriteVariance one line per component: name, variance, fraction explained */
func WriteVariance(fname string, r *Result) error {
	writer, err := utils.CreateAtomic(fname)

	if err != nil {
		return err
	}

	defer writer.Abort()

	writer.WriteString("component\tvariance\tfraction\n")

	for k, name := range r.ComponentNames() {
		writer.WriteString(fmt.Sprintf("%s\t%s\t%s\n", name,
			strconv.FormatFloat(r.Variances[k], 'g', -1, 64),
			strconv.FormatFloat(r.Fractions[k], 'g', -1, 64)))
	}

	return writer.Commit()
}

/*Distribution mean, standard deviation and range of a per-well statistic */
type Distribution struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

func describe(xs []float64) Distribution {
	var d Distribution

	if len(xs) == 0 {
		return d
	}

	d.Mean = stats.Mean(xs)
	d.Min, d.Max = stats.Bounds(xs)

	if len(xs) > 1 {
		d.StdDev = stats.StdDev(xs)
	}

	return d
}

/*Summary per-sample quality metrics: total counts and number of genes with a
non-zero count */
type Summary struct {
	Samples     []string
	LibrarySize []float64
	Detected    []float64

	LibrarySizeDist Distribution
	DetectedDist    Distribution
}

/*Summarize library size and number of detected genes of every well */
func Summarize(m *dgematutils.DenseMatrix) *Summary {
	nbGenes, nbWells := m.Dims()

	summary := &Summary{
		Samples:     m.ColLabels,
		LibrarySize: make([]float64, nbWells),
		Detected:    make([]float64, nbWells),
	}

	for i := 0; i < nbGenes; i++ {
		for j, value := range m.Row(i) {
			summary.LibrarySize[j] += value

			if value > 0 {
				summary.Detected[j]++
			}
		}
	}

	summary.LibrarySizeDist = describe(summary.LibrarySize)
	summary.DetectedDist = describe(summary.Detected)

	return summary
}

/*Print human readable summary */
func (s *Summary) Print(w io.Writer) {
	for _, line := range []struct {
		name string
		dist Distribution
	}{
		{"library size", s.LibrarySizeDist},
		{"detected genes", s.DetectedDist},
	} {
		fmt.Fprintf(w, "%s: mean %.2f sd %.2f min %g max %g (%d samples)\n",
			line.name, line.dist.Mean, line.dist.StdDev, line.dist.Min, line.dist.Max,
			len(s.Samples))
	}
}
