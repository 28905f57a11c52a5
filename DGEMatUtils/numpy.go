package dgematutils

import (
	"io"
	"strings"

	"github.com/kshedden/gonpy"
	log "github.com/sirupsen/logrus"
	utils "gitlab.com/Grouumf/DGEvignettes/DGEUtils"
)

// gonpy closes its writer once the array is written; the atomic writer must
// stay open until Commit.
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}

/*WriteNumpy write the values as a row-major float64 .npy array, plus
<fname>.rows.txt and <fname>.cols.txt holding the labels. None of the three
files is replaced unless all of them were written */
func WriteNumpy(fname string, m *DenseMatrix) error {
	writers, err := StageNumpy(fname, m)

	if err != nil {
		return err
	}

	return utils.CommitAll(writers...)
}

/*StageNumpy write the .npy array and its label files into uncommitted atomic
writers. The caller commits them (utils.CommitAll) or aborts them */
func StageNumpy(fname string, m *DenseMatrix) (writers []*utils.AtomicWriter, err error) {
	rows, cols := m.Dims()

	defer func() {
		if err != nil {
			utils.AbortAll(writers...)
			writers = nil
		}
	}()

	writer, err := utils.CreateAtomic(fname)

	if err != nil {
		return nil, err
	}

	writers = append(writers, writer)

	npw, err := gonpy.NewWriter(nopCloser{writer})

	if err != nil {
		return writers, err
	}

	log.WithFields(log.Fields{
		"filename": fname,
		"rows":     rows,
		"cols":     cols,
		"bytes":    rows * cols * 8,
	}).Infof("writing numpy: %s", fname)

	npw.Shape = []int{rows, cols}

	if err = npw.WriteFloat64(m.Values); err != nil {
		return writers, err
	}

	for _, sidecar := range []struct {
		suffix string
		labels []string
	}{{".rows.txt", m.RowLabels}, {".cols.txt", m.ColLabels}} {
		writer, err = stageLines(fname+sidecar.suffix, sidecar.labels)

		if err != nil {
			return writers, err
		}

		writers = append(writers, writer)
	}

	return writers, nil
}

func stageLines(fname string, lines []string) (*utils.AtomicWriter, error) {
	writer, err := utils.CreateAtomic(fname)

	if err != nil {
		return nil, err
	}

	for _, line := range lines {
		if strings.ContainsAny(line, "\r\n") {
			line = strings.NewReplacer("\r", " ", "\n", " ").Replace(line)
		}

		writer.WriteString(line)
		writer.WriteString("\n")
	}

	return writer, nil
}
