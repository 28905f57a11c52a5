/* Suite of functions dedicated to reshape DGE plates (sparse matrix + identifier tables) into gene x well tables */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	dgedata "gitlab.com/Grouumf/DGEvignettes/DGEData"
	dgematutils "gitlab.com/Grouumf/DGEvignettes/DGEMatUtils"
	dgepca "gitlab.com/Grouumf/DGEvignettes/DGEPCA"
	utils "gitlab.com/Grouumf/DGEvignettes/DGEUtils"
)

/*CONFIG YAML run configuration */
var CONFIG utils.Filename

/*INFILE dense gene x well matrix (input of -pca and -preview) */
var INFILE utils.Filename

/*MTXFILE sparse matrix (MatrixMarket coordinate format) */
var MTXFILE string

/*YGIFILE ordered row (gene) identifiers, one per line */
var YGIFILE string

/*XGIFILE ordered column barcodes, one per line */
var XGIFILE string

/*GENEMAPFILE gene ID -> gene name table */
var GENEMAPFILE string

/*BARCODEMAPFILE barcode -> well table */
var BARCODEMAPFILE string

/*REGIONFILE optional bed file used to keep only the overlapping genes */
var REGIONFILE string

/*FILENAMEOUT output file name */
var FILENAMEOUT string

/*NPYOUT optional .npy copy of the dense matrix */
var NPYOUT string

/*BASEDIR directory against which relative paths are resolved */
var BASEDIR string

/*DELIMITER field delimiter of the sparse matrix */
var DELIMITER string

/*OUTDELIMITER field delimiter of the dense output */
var OUTDELIMITER string

/*COMMENT comment prefix of the sparse matrix */
var COMMENT string

/*SET keep only this set of the barcode table */
var SET string

/*LENIENT only warn when the declared and parsed entry counts differ */
var LENIENT bool

/*WRANGLE sparse matrix -> dense gene x well table */
var WRANGLE bool

/*PCA principal components of the wells */
var PCA bool

/*FETCH dataset labels to retrieve */
var FETCH utils.ArrayFlags

/*REGISTRY user dataset registry */
var REGISTRY string

/*BASEURL dataset mirror overriding the registry one */
var BASEURL string

/*PREVIEW print the top-left corner of a dense matrix */
var PREVIEW bool

/*NBROWS nb rows printed by -preview */
var NBROWS int

/*NBCOLS nb columns printed by -preview */
var NBCOLS int

/*COMPONENTS nb principal components written */
var COMPONENTS int

/*LOGTRANSFORM log2(x+1) before PCA */
var LOGTRANSFORM bool

/*SCALE unit variance genes before PCA */
var SCALE bool

/*VERBOSE debug logs */
var VERBOSE bool

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `
#################### MODULE TO RESHAPE DGE PLATES ########################

USAGE:
DGEMatTools -wrangle -mtx <matrix.mtx> -ygi <genes.tsv> -xgi <barcodes.tsv> -gene_ID_to_name <table> -barcode_map <table> -out <file> (-dir <dir> -config <yaml> -regions <bed> -npy <file.npy> -set <set> -delimiter <char> -comment <prefix> -lenient)
DGEMatTools -pca -in <dense matrix> -out <prefix> (-components <int> -log -scale)
DGEMatTools -preview -in <dense matrix> (-rows <int> -cols <int> -out <file>)
DGEMatTools -fetch <label> -dir <dir> (-registry <yaml> -url <base URL>)

`)
		flag.PrintDefaults()
	}

	flag.Var(&CONFIG, "config", "YAML run configuration (flags override it)")
	flag.Var(&INFILE, "in", "dense gene x well matrix (input of -pca and -preview)")
	flag.StringVar(&MTXFILE, "mtx", "", "sparse matrix in MatrixMarket coordinate format")
	flag.StringVar(&YGIFILE, "ygi", "", "ordered row (gene) identifiers, one per line")
	flag.StringVar(&XGIFILE, "xgi", "", "ordered column barcodes, one per line")
	flag.StringVar(&GENEMAPFILE, "gene_ID_to_name", "", "gene ID -> gene name table (biomaRt export)")
	flag.StringVar(&BARCODEMAPFILE, "barcode_map", "", "barcode -> well table (set, well, barcode)")
	flag.StringVar(&REGIONFILE, "regions", "", "bed file: keep only the genes overlapping these regions")
	flag.StringVar(&FILENAMEOUT, "out", "", "name of the output file (prefix for -pca)")
	flag.StringVar(&NPYOUT, "npy", "", "also write the dense matrix as a .npy array")
	flag.StringVar(&BASEDIR, "dir", ".", "directory against which relative paths are resolved (-fetch: datasets directory)")
	flag.StringVar(&DELIMITER, "delimiter", "whitespace", `sparse matrix delimiter (\t, \s, whitespace or any character)`)
	flag.StringVar(&OUTDELIMITER, "out_delimiter", `\t`, "delimiter of the dense matrix")
	flag.StringVar(&COMMENT, "comment", "%", "comment prefix of the sparse matrix")
	flag.StringVar(&SET, "set", "", "keep only this set of the barcode table")
	flag.BoolVar(&LENIENT, "lenient", false, "only warn when declared and parsed entry counts differ")
	flag.BoolVar(&WRANGLE, "wrangle", false, "reshape the sparse matrix into a gene x well table")
	flag.BoolVar(&PCA, "pca", false, "principal components of the wells of a dense matrix")
	flag.Var(&FETCH, "fetch", "retrieve the example dataset with this label (can be repeated)")
	flag.StringVar(&REGISTRY, "registry", "", "user dataset registry (YAML)")
	flag.StringVar(&BASEURL, "url", "", "dataset mirror overriding the registry baseURL")
	flag.BoolVar(&PREVIEW, "preview", false, "print the top-left corner of a dense matrix")
	flag.IntVar(&NBROWS, "rows", 10, "nb rows printed by -preview")
	flag.IntVar(&NBCOLS, "cols", 8, "nb columns printed by -preview")
	flag.IntVar(&COMPONENTS, "components", 10, "nb principal components written")
	flag.BoolVar(&LOGTRANSFORM, "log", true, "log2(x+1) transform before PCA")
	flag.BoolVar(&SCALE, "scale", false, "scale genes to unit variance before PCA")
	flag.BoolVar(&VERBOSE, "verbose", false, "debug logs")
	flag.Parse()

	if VERBOSE {
		log.SetLevel(log.DebugLevel)
	}

	tStart := time.Now()

	switch {
	case len(FETCH) > 0:
		fetchDataset()
	case WRANGLE:
		wrangle()
	case PCA:
		switch {
		case INFILE == "":
			log.Fatal("Error -in must be provided with -pca")
		case FILENAMEOUT == "":
			FILENAMEOUT = strings.TrimSuffix(string(INFILE), ".tsv")
		}

		runPCA()
	case PREVIEW:
		if INFILE == "" {
			log.Fatal("Error -in must be provided with -preview")
		}

		preview()
	default:
		flag.Usage()
		return
	}

	fmt.Printf("done in time: %f s \n", time.Since(tStart).Seconds())
}

/*loadConfig YAML configuration (or defaults) overridden by the flags set on the command line */
func loadConfig() dgematutils.Config {
	config := dgematutils.DefaultConfig()
	config.BaseDir = BASEDIR

	if CONFIG != "" {
		var err error
		config, err = dgematutils.LoadConfig(string(CONFIG))
		utils.Check(err)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dir":
			config.BaseDir = BASEDIR
		case "mtx":
			config.Matrix = MTXFILE
		case "ygi":
			config.Genes = YGIFILE
		case "xgi":
			config.Barcodes = XGIFILE
		case "gene_ID_to_name":
			config.GeneMap = GENEMAPFILE
		case "barcode_map":
			config.BarcodeMap = BARCODEMAPFILE
		case "regions":
			config.Regions = REGIONFILE
		case "out":
			config.Output = FILENAMEOUT
		case "npy":
			config.Numpy = NPYOUT
		case "delimiter":
			config.Triplets.Delimiter = utils.ParseDelimiter(DELIMITER)
		case "out_delimiter":
			config.Write.Delimiter = utils.ParseDelimiter(OUTDELIMITER)
		case "comment":
			config.Triplets.Comment = COMMENT
		case "set":
			config.BarcodeOpt.Set = SET
		case "lenient":
			config.Triplets.Strict = !LENIENT
		}
	})

	return config
}

func wrangle() {
	config := loadConfig()

	_, err := dgematutils.Run(config, log.StandardLogger())

	var stageErr *dgematutils.StageError

	if errors.As(err, &stageErr) {
		log.Fatalf("Error while running stage %q: %v", stageErr.Stage, stageErr.Err)
	}

	utils.Check(err)
}

func runPCA() {
	matrix, err := dgematutils.ReadDense(string(INFILE), utils.ParseDelimiter(OUTDELIMITER))
	utils.Check(err)

	dgepca.Summarize(matrix).Print(os.Stdout)

	result, err := dgepca.Run(matrix, dgepca.Options{
		Log:        LOGTRANSFORM,
		Scale:      SCALE,
		Components: COMPONENTS,
	}, log.StandardLogger())
	utils.Check(err)

	utils.Check(dgepca.WriteScores(FILENAMEOUT+".scores.tsv", result))
	utils.Check(dgepca.WriteVariance(FILENAMEOUT+".variance.tsv", result))

	fmt.Printf("file: %s.scores.tsv created!\n", FILENAMEOUT)
	fmt.Printf("file: %s.variance.tsv created!\n", FILENAMEOUT)
}

func fetchDataset() {
	registry, err := dgedata.LoadRegistry(REGISTRY)
	utils.Check(err)

	if BASEURL != "" {
		registry.Defaults.BaseURL = BASEURL
	}

	fetcher := dgedata.NewFetcher(BASEDIR, registry, log.StandardLogger())

	for _, label := range FETCH {
		dataset, err := fetcher.Fetch(context.Background(), label)
		utils.Check(err)

		for _, fname := range dataset.FileNames() {
			fmt.Printf("%s\n", utils.Describe(fname))
		}
	}
}

func preview() {
	matrix, err := dgematutils.ReadDense(string(INFILE), utils.ParseDelimiter(OUTDELIMITER))
	utils.Check(err)

	if FILENAMEOUT == "" {
		dgematutils.Preview(os.Stdout, matrix, "gene", NBROWS, NBCOLS)
		return
	}

	writer, err := utils.ReturnWriter(FILENAMEOUT)
	utils.Check(err)
	defer utils.CloseFile(writer)

	dgematutils.Preview(writer, matrix, "gene", NBROWS, NBCOLS)
}
