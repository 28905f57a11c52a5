/* Principal components of a gene x well matrix, wells being the samples */

package dgepca

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/aclements/go-moremath/stats"
	log "github.com/sirupsen/logrus"
	dgematutils "gitlab.com/Grouumf/DGEvignettes/DGEMatUtils"
	utils "gitlab.com/Grouumf/DGEvignettes/DGEUtils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

/*Options PCA preprocessing. Components <= 0 keeps every component */
type Options struct {
	Log        bool
	Scale      bool
	Components int
}

/*Result scores of the samples and variance explained by each component */
type Result struct {
	Samples   []string
	Features  []string
	Scores    *mat.Dense
	Variances []float64
	Fractions []float64
	Dropped   int
}

/*Run compute the principal components of the wells of m. Genes constant
across wells carry no variance and are dropped */
func Run(m *dgematutils.DenseMatrix, opts Options, logger log.FieldLogger) (*Result, error) {
	if logger == nil {
		logger = log.StandardLogger()
	}

	nbGenes, nbWells := m.Dims()

	if nbWells < 2 {
		return nil, fmt.Errorf("PCA needs at least 2 samples, found %d", nbWells)
	}

	tStart := time.Now()
	result := &Result{Samples: m.ColLabels}

	var columns [][]float64

	for i := 0; i < nbGenes; i++ {
		values := make([]float64, nbWells)
		copy(values, m.Row(i))

		if opts.Log {
			for j := range values {
				values[j] = math.Log2(values[j] + 1)
			}
		}

		sd := stats.StdDev(values)

		if sd == 0 || math.IsNaN(sd) {
			result.Dropped++
			continue
		}

		mean := stats.Mean(values)

		for j := range values {
			values[j] -= mean

			if opts.Scale {
				values[j] /= sd
			}
		}

		columns = append(columns, values)
		result.Features = append(result.Features, m.RowLabels[i])
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("PCA: every gene is constant across the %d samples", nbWells)
	}

	data := mat.NewDense(nbWells, len(columns), nil)

	for k, values := range columns {
		data.SetCol(k, values)
	}

	var pc stat.PC

	if ok := pc.PrincipalComponents(data, nil); !ok {
		return nil, fmt.Errorf("PCA: decomposition failed")
	}

	result.Variances = pc.VarsTo(nil)

	var vectors mat.Dense
	pc.VectorsTo(&vectors)

	nbComponents := len(result.Variances)

	if opts.Components > 0 && opts.Components < nbComponents {
		nbComponents = opts.Components
	}

	result.Scores = new(mat.Dense)
	result.Scores.Mul(data, vectors.Slice(0, len(columns), 0, nbComponents))

	var total float64

	for _, variance := range result.Variances {
		total += variance
	}

	result.Fractions = make([]float64, len(result.Variances))

	for k, variance := range result.Variances {
		result.Fractions[k] = variance / total
	}

	result.Variances = result.Variances[:nbComponents]
	result.Fractions = result.Fractions[:nbComponents]

	logger.WithFields(log.Fields{
		"samples":  nbWells,
		"features": len(columns),
		"dropped":  result.Dropped,
	}).Infof("PC1 explains %.1f%% of the variance", 100*result.Fractions[0])
	utils.TimeIt(logger, "PCA", tStart)

	return result, nil
}

/*ComponentNames PC1, PC2, ... */
func (r *Result) ComponentNames() []string {
	names := make([]string, len(r.Variances))

	for k := range names {
		names[k] = "PC" + strconv.Itoa(k+1)
	}

	return names
}

/*ScoreMatrix scores as a sample x component matrix, ready to be written */
func (r *Result) ScoreMatrix() *dgematutils.DenseMatrix {
	nbSamples, _ := r.Scores.Dims()
	matrix := dgematutils.NewDenseMatrix(r.Samples, r.ComponentNames())

	for i := 0; i < nbSamples; i++ {
		mat.Row(matrix.Row(i), i, r.Scores)
	}

	return matrix
}
