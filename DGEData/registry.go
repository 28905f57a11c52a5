/* Registry of the example datasets retrievable by label */

package dgedata

import (
	_ "embed"
	"os"
	"sort"

	"github.com/jinzhu/copier"
	utils "gitlab.com/Grouumf/DGEvignettes/DGEUtils"
	"gopkg.in/yaml.v3"
)

//go:embed registry.yaml
var embeddedRegistry []byte

/*Dataset files making up one example dataset. File fields hold names
relative to BaseURL (remote) and to the dataset directory (local) */
type Dataset struct {
	Label       string `yaml:"-"`
	Description string `yaml:"description"`
	BaseURL     string `yaml:"baseURL"`
	Matrix      string `yaml:"matrix"`
	Genes       string `yaml:"genes"`
	Barcodes    string `yaml:"barcodes"`
	GeneMap     string `yaml:"geneMap"`
	BarcodeMap  string `yaml:"barcodeMap"`
	Dense       string `yaml:"dense"`
}

/*FileNames the non-empty file names of the dataset */
func (d *Dataset) FileNames() []string {
	var names []string

	for _, name := range []string{d.Matrix, d.Genes, d.Barcodes, d.GeneMap, d.BarcodeMap, d.Dense} {
		if name != "" {
			names = append(names, name)
		}
	}

	return names
}

/*Registry enumerated set of dataset labels */
type Registry struct {
	Defaults Dataset            `yaml:"defaults"`
	Datasets map[string]Dataset `yaml:"datasets"`
}

/*DefaultRegistry registry shipped with the module */
func DefaultRegistry() (*Registry, error) {
	registry := &Registry{}

	if err := yaml.Unmarshal(embeddedRegistry, registry); err != nil {
		return nil, &utils.FormatError{File: "registry.yaml", Reason: err.Error()}
	}

	return registry, nil
}

/*LoadRegistry embedded registry overlaid with the user registry fname.
Datasets of fname replace the embedded ones with the same label */
func LoadRegistry(fname string) (*Registry, error) {
	registry, err := DefaultRegistry()

	if err != nil || fname == "" {
		return registry, err
	}

	content, err := os.ReadFile(fname)

	if err != nil {
		return nil, &utils.IOError{Op: "read", Path: fname, Err: err}
	}

	user := &Registry{}

	if err = yaml.Unmarshal(content, user); err != nil {
		return nil, &utils.FormatError{File: fname, Reason: err.Error()}
	}

	err = copier.CopyWithOption(&registry.Defaults, &user.Defaults,
		copier.Option{IgnoreEmpty: true})

	if err != nil {
		return nil, err
	}

	for label, dataset := range user.Datasets {
		registry.Datasets[label] = dataset
	}

	return registry, nil
}

/*Labels sorted dataset labels */
func (r *Registry) Labels() []string {
	labels := make([]string, 0, len(r.Datasets))

	for label := range r.Datasets {
		labels = append(labels, label)
	}

	sort.Strings(labels)

	return labels
}

/*Lookup dataset label merged over the registry defaults */
func (r *Registry) Lookup(label string) (Dataset, error) {
	var dataset Dataset

	entry, isInside := r.Datasets[label]

	if !isInside {
		return dataset, &utils.UnrecognizedLabelError{Label: label, Known: r.Labels()}
	}

	if err := copier.Copy(&dataset, &r.Defaults); err != nil {
		return dataset, err
	}

	err := copier.CopyWithOption(&dataset, &entry,
		copier.Option{IgnoreEmpty: true, DeepCopy: true})

	dataset.Label = label

	return dataset, err
}
