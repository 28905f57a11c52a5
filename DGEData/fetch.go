/* Retrieval of the example datasets into <BaseDir>/<label>/ */

package dgedata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/viant/afs"
	"github.com/viant/afs/url"
	utils "gitlab.com/Grouumf/DGEvignettes/DGEUtils"
)

/*Fetcher downloads registry datasets below BaseDir */
type Fetcher struct {
	BaseDir  string
	Registry *Registry
	fs       afs.Service
	logger   log.FieldLogger
}

/*NewFetcher fetcher storing the datasets under baseDir. A nil logger means the
standard logger */
func NewFetcher(baseDir string, registry *Registry, logger log.FieldLogger) *Fetcher {
	if logger == nil {
		logger = log.StandardLogger()
	}

	return &Fetcher{
		BaseDir:  baseDir,
		Registry: registry,
		fs:       afs.New(),
		logger:   logger,
	}
}

/*Dir local directory of a dataset */
func (f *Fetcher) Dir(label string) string {
	return filepath.Join(f.BaseDir, label)
}

/*Paths local paths of the dataset files, nothing is downloaded */
func (f *Fetcher) Paths(label string) (Dataset, error) {
	dataset, err := f.Registry.Lookup(label)

	if err != nil {
		return dataset, err
	}

	dir := f.Dir(label)

	for _, field := range []*string{&dataset.Matrix, &dataset.Genes, &dataset.Barcodes,
		&dataset.GeneMap, &dataset.BarcodeMap, &dataset.Dense} {
		if *field != "" {
			*field = filepath.Join(dir, *field)
		}
	}

	return dataset, nil
}

/*Fetch make sure every file of the dataset exists locally, downloading the
missing ones. An unknown label fails before anything is written. The
returned dataset holds the local paths */
func (f *Fetcher) Fetch(ctx context.Context, label string) (Dataset, error) {
	dataset, err := f.Registry.Lookup(label)

	if err != nil {
		return dataset, err
	}

	dir := f.Dir(label)

	if err = os.MkdirAll(dir, 0755); err != nil {
		return dataset, &utils.IOError{Op: "create", Path: dir, Err: err}
	}

	tStart := time.Now()

	for _, name := range dataset.FileNames() {
		local := filepath.Join(dir, name)

		if utils.FileExists(local) {
			f.logger.Debugf("%s already present", utils.Describe(local))
			continue
		}

		if dataset.BaseURL == "" {
			return dataset, fmt.Errorf("dataset %s: %s missing and no baseURL configured", label, local)
		}

		if err = f.download(ctx, url.Join(dataset.BaseURL, name), local); err != nil {
			return dataset, err
		}

		f.logger.WithField("dataset", label).Infof("fetched %s", utils.Describe(local))
	}

	utils.TimeIt(f.logger, fmt.Sprintf("Fetching dataset %s", label), tStart)

	return f.Paths(label)
}

func (f *Fetcher) download(ctx context.Context, URL, local string) error {
	content, err := f.fs.DownloadWithURL(ctx, URL)

	if err != nil {
		return &utils.IOError{Op: "download", Path: URL, Err: err}
	}

	writer, err := utils.CreateAtomicRaw(local)

	if err != nil {
		return err
	}

	defer writer.Abort()

	if _, err = writer.Write(content); err != nil {
		return &utils.IOError{Op: "write", Path: local, Err: err}
	}

	return writer.Commit()
}
