/* Generation of simulated DGE plates: sparse counts plus identifier tables */

package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/valyala/fastrand"
	dgematutils "gitlab.com/Grouumf/DGEvignettes/DGEMatUtils"
	utils "gitlab.com/Grouumf/DGEvignettes/DGEUtils"
)

/*NUCLEOTIDES barcode alphabet */
const NUCLEOTIDES = "ACGT"

/*WELLSPERPLATE 8 x 12 plate */
const WELLSPERPLATE = 96

/*SimOptions shape of the simulated dataset. Duplicates genes share the
display name of another gene, Unmapped genes are missing from the gene table
and Unlabeled barcodes are missing from the barcode table */
type SimOptions struct {
	OutDir      string
	Genes       int
	Wells       int
	Density     float64
	MeanCount   int
	Duplicates  int
	Unmapped    int
	Unlabeled   int
	BarcodeSize int
	Seed        uint32
	Compress    bool
}

/*DefaultSimOptions one 96-well plate of 200 genes, 30% non-zero counts */
func DefaultSimOptions() SimOptions {
	return SimOptions{
		Genes:       200,
		Wells:       96,
		Density:     0.3,
		MeanCount:   10,
		BarcodeSize: 12,
		Seed:        2019,
	}
}

func (opts *SimOptions) validate() error {
	switch {
	case opts.OutDir == "":
		return fmt.Errorf("an output directory must be provided")
	case opts.Genes < 1 || opts.Wells < 1:
		return fmt.Errorf("at least one gene and one well are needed")
	case opts.Density <= 0 || opts.Density > 1:
		return fmt.Errorf("density %f outside ]0, 1]", opts.Density)
	case opts.MeanCount < 1:
		return fmt.Errorf("mean count must be positive")
	case opts.Duplicates < 0 || opts.Unmapped < 0 || opts.Unlabeled < 0:
		return fmt.Errorf("duplicated, unmapped and unlabeled counts cannot be negative")
	case 2*opts.Duplicates+opts.Unmapped >= opts.Genes:
		return fmt.Errorf("too many duplicated or unmapped genes for %d genes", opts.Genes)
	case opts.Unlabeled >= opts.Wells:
		return fmt.Errorf("unlabeled wells must leave at least one well")
	case opts.Seed == 0:
		return fmt.Errorf("seed must be non-zero")
	}

	// 4^size barcodes must be enough for every well
	if opts.BarcodeSize < 1 || opts.BarcodeSize < 16 && 1<<(2*opts.BarcodeSize) < 2*opts.Wells {
		return fmt.Errorf("barcode size %d too small for %d wells", opts.BarcodeSize, opts.Wells)
	}

	return nil
}

/*simulator holds the RNG so that equal seeds give identical datasets */
type simulator struct {
	opts SimOptions
	rng  fastrand.RNG
}

/*Simulate write the dataset into opts.OutDir and return the wrangling
configuration reading it */
func Simulate(opts SimOptions) (dgematutils.Config, error) {
	config := dgematutils.DefaultConfig()

	if err := opts.validate(); err != nil {
		return config, err
	}

	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return config, &utils.IOError{Op: "create", Path: opts.OutDir, Err: err}
	}

	tStart := time.Now()
	sim := &simulator{opts: opts}
	sim.rng.Seed(opts.Seed)

	config.BaseDir = opts.OutDir
	config.Matrix = "matrix.mtx"
	config.Genes = "genes.tsv"
	config.Barcodes = "barcodes.tsv"
	config.GeneMap = "gene_ID_to_name.tsv"
	config.BarcodeMap = "barcode_map.tsv"
	config.Output = "dge_matrix.tsv"

	if opts.Compress {
		config.Matrix += ".gz"
	}

	barcodes := sim.barcodes()

	steps := []struct {
		fname string
		write func(*utils.AtomicWriter)
	}{
		{config.Matrix, sim.writeMatrix},
		{config.Genes, sim.writeGenes},
		{config.Barcodes, func(w *utils.AtomicWriter) { writeBarcodes(w, barcodes) }},
		{config.GeneMap, sim.writeGeneMap},
		{config.BarcodeMap, func(w *utils.AtomicWriter) { sim.writeBarcodeMap(w, barcodes) }},
	}

	for _, step := range steps {
		if err := writeAtomic(config.Path(step.fname), step.write); err != nil {
			return config, err
		}
	}

	log.WithFields(log.Fields{
		"genes": opts.Genes,
		"wells": opts.Wells,
		"seed":  opts.Seed,
	}).Infof("simulated dataset written in %s", opts.OutDir)
	utils.TimeIt(log.StandardLogger(), "Simulation", tStart)

	return config, nil
}

func writeAtomic(fname string, write func(*utils.AtomicWriter)) error {
	writer, err := utils.CreateAtomic(fname)

	if err != nil {
		return err
	}

	defer writer.Abort()

	write(writer)

	return writer.Commit()
}

func primaryID(i int) string {
	return fmt.Sprintf("ENSG%011d", i+1)
}

func displayID(i int) string {
	return "GENE" + strconv.Itoa(i+1)
}

func wellLabel(j int) string {
	well := j % WELLSPERPLATE
	label := fmt.Sprintf("%c%02d", 'A'+well/12, well%12+1)

	if plate := j / WELLSPERPLATE; plate > 0 {
		label = fmt.Sprintf("P%d_%s", plate+1, label)
	}

	return label
}

/*barcodes distinct random barcodes, one per well */
func (s *simulator) barcodes() []string {
	barcodes := make([]string, s.opts.Wells)
	used := make(map[string]bool, s.opts.Wells)
	buffer := make([]byte, s.opts.BarcodeSize)

	for j := range barcodes {
		for {
			for k := range buffer {
				buffer[k] = NUCLEOTIDES[s.rng.Uint32n(4)]
			}

			if !used[string(buffer)] {
				break
			}
		}

		barcodes[j] = string(buffer)
		used[barcodes[j]] = true
	}

	return barcodes
}

/*writeMatrix one entry per (gene, well) drawn with probability Density.
Counts are uniform in 1..2*MeanCount-1 */
func (s *simulator) writeMatrix(writer *utils.AtomicWriter) {
	threshold := uint32(s.opts.Density * 1000000)
	var entries []dgematutils.SparseEntry

	for j := 0; j < s.opts.Wells; j++ {
		for i := 0; i < s.opts.Genes; i++ {
			if s.opts.Density < 1 && s.rng.Uint32n(1000000) >= threshold {
				continue
			}

			count := 1 + s.rng.Uint32n(uint32(2*s.opts.MeanCount-1))
			entries = append(entries, dgematutils.SparseEntry{Row: i + 1, Col: j + 1, Value: float64(count)})
		}
	}

	writer.WriteString("%%MatrixMarket matrix coordinate integer general\n")
	writer.WriteString(fmt.Sprintf("%% simulated DGE plate, seed %d\n", s.opts.Seed))
	writer.WriteString(fmt.Sprintf("%d %d %d\n", s.opts.Genes, s.opts.Wells, len(entries)))

	for _, entry := range entries {
		writer.WriteString(fmt.Sprintf("%d %d %d\n", entry.Row, entry.Col, int(entry.Value)))
	}
}

func (s *simulator) writeGenes(writer *utils.AtomicWriter) {
	for i := 0; i < s.opts.Genes; i++ {
		writer.WriteString(primaryID(i))
		writer.WriteString("\n")
	}
}

func writeBarcodes(writer *utils.AtomicWriter, barcodes []string) {
	for _, barcode := range barcodes {
		writer.WriteString(barcode)
		writer.WriteString("\n")
	}
}

/*writeGeneMap biomaRt-like table. The last Unmapped genes are left out and
the Duplicates genes before them reuse the display name of the first genes */
func (s *simulator) writeGeneMap(writer *utils.AtomicWriter) {
	defaults := dgematutils.DefaultMapOptions()
	mapped := s.opts.Genes - s.opts.Unmapped
	firstDuplicate := mapped - s.opts.Duplicates

	writer.WriteString(fmt.Sprintf("%s\t%s\t%s\t%s\t%s\n",
		defaults.PrimaryColumn, defaults.DisplayColumn,
		defaults.ChrColumn, defaults.StartColumn, defaults.EndColumn))

	for i := 0; i < mapped; i++ {
		name := displayID(i)

		if i >= firstDuplicate {
			name = displayID(i - firstDuplicate)
		}

		chr := 1 + s.rng.Uint32n(22)
		start := 1 + s.rng.Uint32n(100000000)
		end := start + 1000 + s.rng.Uint32n(50000)

		writer.WriteString(fmt.Sprintf("%s\t%s\t%d\t%d\t%d\n", primaryID(i), name, chr, start, end))
	}
}

func (s *simulator) writeBarcodeMap(writer *utils.AtomicWriter, barcodes []string) {
	defaults := dgematutils.DefaultBarcodeOptions()

	writer.WriteString(fmt.Sprintf("%s\t%s\t%s\n",
		defaults.SetColumn, defaults.LabelColumn, defaults.BarcodeColumn))

	for j := 0; j < s.opts.Wells-s.opts.Unlabeled; j++ {
		writer.WriteString(fmt.Sprintf("P%d\t%s\t%s\n", j/WELLSPERPLATE+1, wellLabel(j), barcodes[j]))
	}
}
