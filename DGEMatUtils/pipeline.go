/* Wrangling pipeline: sparse matrix + row/column identifiers -> dense gene x well table */

package dgematutils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	utils "gitlab.com/Grouumf/DGEvignettes/DGEUtils"
	"gopkg.in/yaml.v3"
)

/*Stage step of the pipeline, reported when a run fails */
type Stage string

const (
	/*StageLoad sparse triplet loading */
	StageLoad Stage = "load sparse matrix"
	/*StageRows row identifier resolution */
	StageRows Stage = "resolve rows"
	/*StageCols column identifier resolution */
	StageCols Stage = "resolve columns"
	/*StageWrite dense reconstruction and serialization */
	StageWrite Stage = "write dense matrix"
)

/*StageError error raised while running Stage */
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

/*Config every input of one wrangling run. Relative paths are resolved against
BaseDir, never against the process working directory */
type Config struct {
	BaseDir    string `yaml:"baseDir"`
	Matrix     string `yaml:"matrix"`
	Genes      string `yaml:"genes"`
	Barcodes   string `yaml:"barcodes"`
	GeneMap    string `yaml:"geneMap"`
	BarcodeMap string `yaml:"barcodeMap"`
	Regions    string `yaml:"regions"`
	Output     string `yaml:"output"`
	Numpy      string `yaml:"numpy"`

	Triplets   TripletOptions `yaml:"triplets"`
	GeneMapOpt MapOptions     `yaml:"geneMapOptions"`
	BarcodeOpt BarcodeOptions `yaml:"barcodeMapOptions"`
	Write      WriteOptions   `yaml:"write"`
}

/*DefaultConfig default options of every stage, output written to dge_matrix.tsv */
func DefaultConfig() Config {
	return Config{
		Output:     "dge_matrix.tsv",
		Triplets:   DefaultTripletOptions(),
		GeneMapOpt: DefaultMapOptions(),
		BarcodeOpt: DefaultBarcodeOptions(),
		Write:      DefaultWriteOptions(),
	}
}

/*LoadConfig read a YAML run configuration on top of the defaults. A relative
baseDir is taken relative to the configuration file */
func LoadConfig(fname string) (Config, error) {
	config := DefaultConfig()

	content, err := os.ReadFile(fname)

	if err != nil {
		return config, &utils.IOError{Op: "read", Path: fname, Err: err}
	}

	if err = yaml.Unmarshal(content, &config); err != nil {
		return config, &utils.FormatError{File: fname, Reason: err.Error()}
	}

	if !filepath.IsAbs(config.BaseDir) {
		config.BaseDir = filepath.Join(filepath.Dir(fname), config.BaseDir)
	}

	return config, nil
}

/*Path resolve fname against BaseDir. Empty names stay empty */
func (c *Config) Path(fname string) string {
	if fname == "" || filepath.IsAbs(fname) {
		return fname
	}

	return filepath.Join(c.BaseDir, fname)
}

/*Validate check that every mandatory input is set */
func (c *Config) Validate() error {
	for name, value := range map[string]string{
		"matrix":     c.Matrix,
		"genes":      c.Genes,
		"barcodes":   c.Barcodes,
		"geneMap":    c.GeneMap,
		"barcodeMap": c.BarcodeMap,
		"output":     c.Output,
	} {
		if value == "" {
			return fmt.Errorf("configuration: %s must be provided", name)
		}
	}

	return nil
}

/*Result summary of a successful run */
type Result struct {
	Sparse *SparseMatrix
	Rows   ResolvedRows
	Cols   ResolvedCols
	Matrix *DenseMatrix
	Output string
}

/*Run execute the four stages in order and write the dense matrix. On error
nothing is written and the returned *StageError names the failing stage */
func Run(config Config, logger log.FieldLogger) (*Result, error) {
	if logger == nil {
		logger = log.StandardLogger()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	tStart := time.Now()

	sparse, err := LoadSparseTriplets(config.Path(config.Matrix), config.Triplets, logger)
	if err != nil {
		return nil, &StageError{Stage: StageLoad, Err: err}
	}

	rows, err := resolveRowStage(&config, sparse.Rows, logger)
	if err != nil {
		return nil, &StageError{Stage: StageRows, Err: err}
	}

	cols, err := resolveColStage(&config, sparse.Cols, logger)
	if err != nil {
		return nil, &StageError{Stage: StageCols, Err: err}
	}

	matrix := Reconstruct(sparse, rows, cols)
	output := config.Path(config.Output)

	if err = writeOutputs(&config, output, matrix); err != nil {
		return nil, &StageError{Stage: StageWrite, Err: err}
	}

	nbRows, nbCols := matrix.Dims()
	logger.WithFields(log.Fields{
		"rows": nbRows,
		"cols": nbCols,
	}).Infof("file: %s created!", output)
	utils.TimeIt(logger, "Wrangling", tStart)

	return &Result{
		Sparse: sparse,
		Rows:   rows,
		Cols:   cols,
		Matrix: matrix,
		Output: output,
	}, nil
}

/*writeOutputs stage the optional .npy export and the dense matrix, then
commit them together. The dense matrix is renamed last, so it is only replaced
once every other output is in place */
func writeOutputs(config *Config, output string, matrix *DenseMatrix) error {
	var writers []*utils.AtomicWriter
	defer func() { utils.AbortAll(writers...) }()

	if config.Numpy != "" {
		staged, err := StageNumpy(config.Path(config.Numpy), matrix)

		if err != nil {
			return err
		}

		writers = append(writers, staged...)
	}

	dense, err := utils.CreateAtomic(output)

	if err != nil {
		return err
	}

	writers = append(writers, dense)

	if err = WriteDense(dense, matrix, config.Write); err != nil {
		return err
	}

	return utils.CommitAll(writers...)
}

func resolveRowStage(config *Config, declaredRows int, logger log.FieldLogger) (ResolvedRows, error) {
	index, err := LoadRowIndex(config.Path(config.Genes), declaredRows)
	if err != nil {
		return nil, err
	}

	mapping, err := LoadIdentifierMap(config.Path(config.GeneMap), config.GeneMapOpt)
	if err != nil {
		return nil, err
	}

	mapping = DedupDisplay(mapping)

	if config.Regions != "" {
		regions, err := utils.LoadRegions(config.Path(config.Regions))
		if err != nil {
			return nil, err
		}

		regionIndex, err := NewRegionFilter(regions)
		if err != nil {
			return nil, err
		}

		before := len(mapping)
		mapping = FilterByRegions(mapping, regionIndex)
		logger.Infof("%d / %d genes overlap the %d regions", len(mapping), before, regionIndex.Len())
	}

	return ResolveRows(index, mapping, logger), nil
}

func resolveColStage(config *Config, declaredCols int, logger log.FieldLogger) (ResolvedCols, error) {
	index, err := LoadColIndex(config.Path(config.Barcodes), declaredCols)
	if err != nil {
		return nil, err
	}

	barcodes, err := LoadBarcodeMap(config.Path(config.BarcodeMap), config.BarcodeOpt)
	if err != nil {
		return nil, err
	}

	return ResolveCols(index, barcodes, logger), nil
}

/*NewRegionFilter index the regions of a BED file. An empty region list is an
error since it would drop every gene */
func NewRegionFilter(regions []utils.Region) (*utils.RegionIndex, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("region file holds no region")
	}

	return utils.NewRegionIndex(regions)
}
