/* Suite of functions dedicated to generate simulated DGE plates */

package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	dgematutils "gitlab.com/Grouumf/DGEvignettes/DGEMatUtils"
	utils "gitlab.com/Grouumf/DGEvignettes/DGEUtils"
)

/*OUTDIR output directory of the simulated files */
var OUTDIR string

/*GENENB number of genes to generate */
var GENENB int

/*WELLNB number of wells to generate */
var WELLNB int

/*DENSITY probability of a non-zero count */
var DENSITY float64

/*MEANCOUNT average non-zero count */
var MEANCOUNT int

/*DUPLICATES number of genes sharing a display name */
var DUPLICATES int

/*UNMAPPED number of genes missing from the gene table */
var UNMAPPED int

/*UNLABELED number of barcodes missing from the barcode table */
var UNLABELED int

/*SEED seed used for random processes */
var SEED uint

/*COMPRESS gzip the simulated matrix */
var COMPRESS bool

/*SIMULATE simulate a DGE plate */
var SIMULATE bool

/*WRANGLE reshape the simulated plate once written */
var WRANGLE bool

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `
#################### MODULE TO CREATE SIMULATED DGE PLATES ########################

USAGE: DGESimUtils -simulate -dir <string> (-genes <int> -wells <int> -density <float> -mean <int> -seed <int> -duplicates <int> -unmapped <int> -unlabeled <int> -gz -wrangle)

`)
		flag.PrintDefaults()
	}

	defaults := DefaultSimOptions()

	flag.StringVar(&OUTDIR, "dir", "", "output directory of the simulated files")
	flag.IntVar(&GENENB, "genes", defaults.Genes, "Number of genes to generate")
	flag.IntVar(&WELLNB, "wells", defaults.Wells, "Number of wells to generate")
	flag.Float64Var(&DENSITY, "density", defaults.Density, "probability of a non-zero count")
	flag.IntVar(&MEANCOUNT, "mean", defaults.MeanCount, "Average non-zero count")
	flag.IntVar(&DUPLICATES, "duplicates", 0, "number of genes sharing the display name of another gene")
	flag.IntVar(&UNMAPPED, "unmapped", 0, "number of genes missing from the gene ID -> name table")
	flag.IntVar(&UNLABELED, "unlabeled", 0, "number of barcodes missing from the barcode table")
	flag.UintVar(&SEED, "seed", uint(defaults.Seed), "Seed used for random processes (non-zero)")
	flag.BoolVar(&COMPRESS, "gz", false, "gzip the simulated matrix")
	flag.BoolVar(&WRANGLE, "wrangle", false, "reshape the simulated plate into a gene x well table")
	flag.BoolVar(&SIMULATE, "simulate", false, `Simulate a DGE plate`)
	flag.Parse()

	switch {
	case SIMULATE:
		opts := defaults
		opts.OutDir = OUTDIR
		opts.Genes = GENENB
		opts.Wells = WELLNB
		opts.Density = DENSITY
		opts.MeanCount = MEANCOUNT
		opts.Duplicates = DUPLICATES
		opts.Unmapped = UNMAPPED
		opts.Unlabeled = UNLABELED
		opts.Seed = uint32(SEED)
		opts.Compress = COMPRESS

		config, err := Simulate(opts)
		utils.Check(err)

		nbLines, err := utils.CountNbLines(config.Path(config.Matrix))
		utils.Check(err)
		fmt.Printf("Nb matrix lines: %d\n", nbLines)

		if WRANGLE {
			_, err = dgematutils.Run(config, log.StandardLogger())
			utils.Check(err)
		}

	default:
		flag.Usage()
	}
}
